package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/config"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/db"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/logger"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer zap.L().Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer closeStore()

	s, err := api.NewServer(conf, store)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	defer s.Broker.Close()

	if conf.Admin.Email != "" {
		created, err := s.Auth.EnsureAdmin(ctx, conf.Admin.Name, conf.Admin.Email, conf.Admin.Password)
		if err != nil {
			return fmt.Errorf("failed to seed admin account -> %w", err)
		}
		if created {
			zap.L().Info("admin account created", zap.String("email", conf.Admin.Email))
		}
	}

	srv := &http.Server{
		Addr:    ":" + conf.API.Port,
		Handler: s.Router,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr),
			zap.String("driver", conf.Database.Driver),
			zap.String("environment", conf.API.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		zap.L().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.API.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, conf *config.AppConfig) (repository.Store, func(), error) {
	switch conf.Database.Driver {
	case config.DriverPostgres:
		var (
			postgresDB *gorm.DB
			err        error
		)
		if conf.Postgres.URL != "" {
			postgresDB, err = db.OpenPostgresWithURL(conf.Postgres.URL)
		} else {
			postgresDB, err = db.OpenPostgres(conf.Postgres)
		}
		if err != nil {
			return repository.Store{}, nil, err
		}

		return repository.NewPostgresStore(postgresDB), func() {
			if err := db.ClosePostgres(postgresDB); err != nil {
				zap.L().Warn("failed to close postgres", zap.Error(err))
			}
		}, nil
	default:
		client, mongoDB, err := db.OpenMongo(ctx, conf.Mongo)
		if err != nil {
			return repository.Store{}, nil, err
		}

		return repository.NewMongoStore(mongoDB), func() { disconnectMongo(client) }, nil
	}
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		zap.L().Warn("failed to disconnect mongo", zap.Error(err))
	}
}
