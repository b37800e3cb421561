package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/config"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/mongodao"
)

// OpenMongo connects, pings the primary and makes sure the indexes exist.
func OpenMongo(ctx context.Context, conf *config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo.Connect -> %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("client.Ping -> %w", err)
	}

	database := client.Database(conf.Database)
	if err = mongodao.InitIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodao.InitIndexes -> %w", err)
	}

	return client, database, nil
}
