package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/docs"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/graph"
	v1 "github.com/yizeng/gab/gin/graphql/eventhub/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/middleware"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/wsgraphql"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/authz"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/config"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pkg/jwthelper"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Broker *pubsub.Broker
	Auth   *service.AuthService

	authenticator *middleware.Authenticator
}

func NewServer(conf *config.AppConfig, store repository.Store) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	ttl, err := conf.Auth.TokenTTL()
	if err != nil {
		return nil, fmt.Errorf("conf.Auth.TokenTTL -> %w", err)
	}
	issuer := jwthelper.NewIssuer(conf.Auth.JWTSecret, ttl)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("authz.NewEnforcer -> %w", err)
	}

	s := &Server{
		Config:        conf,
		Router:        engine,
		Broker:        pubsub.NewBroker(conf.PubSub.OutputChannelBuffer, zap.L()),
		authenticator: middleware.NewAuthenticator(issuer),
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(store.Users)
	eventRepo := repository.NewEventRepository(store.Events)

	s.Auth = service.NewAuthService(userRepo, issuer, conf.Auth.AllowAdminSignup)
	services := graph.Services{
		Auth:          s.Auth,
		Users:         service.NewUserService(userRepo, enforcer),
		Events:        service.NewEventService(eventRepo, enforcer, s.Broker),
		Registrations: service.NewRegistrationService(repository.NewRegistrationRepository(store.Registrations), eventRepo, enforcer, s.Broker),
		Comments:      service.NewCommentService(repository.NewCommentRepository(store.Comments), eventRepo, enforcer, s.Broker),
	}

	schema, err := s.initSchema(services)
	if err != nil {
		return nil, err
	}

	authHandler := v1.NewAuthHandler(s.Auth)
	userHandler := v1.NewUserHandler(services.Users)
	s.MountHandlers(authHandler, userHandler, graph.NewHandler(schema), s.initSubscriptionServer(schema))

	return s, nil
}

func (s *Server) initSchema(services graph.Services) (*graphql.Schema, error) {
	resolver := graph.NewResolver(services, s.Broker)

	schema, err := graph.NewSchema(resolver, graphql.Logger(panicLogger{}))
	if err != nil {
		return nil, fmt.Errorf("graph.NewSchema -> %w", err)
	}

	return schema, nil
}

func (s *Server) initSubscriptionServer(schema *graphql.Schema) *wsgraphql.Server {
	return wsgraphql.NewServer(schema, s.authenticator, wsgraphql.Config{
		InitTimeout:    s.Config.WS.InitTimeout,
		PingPeriod:     s.Config.WS.PingPeriod,
		MaxMessageSize: s.Config.WS.MaxMessageSize,
		CheckOrigin:    s.checkOrigin,
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.Config.API.IsDevelopment() {
		return true
	}

	domains := s.Config.API.CORSDomains()

	return slices.Contains(domains, "*") || slices.Contains(domains, origin)
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, graphHandler *graph.Handler, subscriptions *wsgraphql.Server) {
	const basePath = "/api/v1"

	gql := s.Router.Group("/graphql", s.authenticator.Identify())
	{
		gql.POST("", graphHandler.HandleQuery)
		gql.GET("", func(ctx *gin.Context) {
			if wsgraphql.IsUpgrade(ctx.Request) {
				subscriptions.Handle(ctx)
				return
			}
			graphHandler.HandleQuery(ctx)
		})
	}

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	users := s.Router.Group(basePath, s.authenticator.VerifyJWT())
	{
		users.GET("/users/me", userHandler.HandleMe)
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/health", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event Hub API"
	docs.SwaggerInfo.Description = "REST companion of the Event Hub GraphQL API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// panicLogger reports resolver panics through zap instead of the standard logger.
type panicLogger struct{}

func (panicLogger) LogPanic(_ context.Context, value interface{}) {
	zap.L().Error("graphql resolver panic", zap.Any("value", value), zap.Stack("stack"))
}
