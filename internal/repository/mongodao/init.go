package mongodao

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	eventsCollection        = "events"
	registrationsCollection = "registrations"
	commentsCollection      = "comments"
)

// InitIndexes creates the indexes the DAOs rely on. It is idempotent.
func InitIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_users_email"),
			},
		},
		eventsCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "organizerId", Value: 1}}},
		},
		registrationsCollection: {
			{
				Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("idx_registrations_active_event_user").
					SetPartialFilterExpression(bson.M{"active": true}),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s.Indexes().CreateMany -> %w", name, err)
		}
	}

	return nil
}

// now is truncated to milliseconds, the precision mongo stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
