package mongodao

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

type EventDAO struct {
	events *mongo.Collection
}

func NewEventDAO(db *mongo.Database) *EventDAO {
	return &EventDAO{
		events: db.Collection(eventsCollection),
	}
}

func (d *EventDAO) Insert(ctx context.Context, event dao.Event) (dao.Event, error) {
	if event.ID == "" {
		event.ID = dao.NewID()
	}
	if event.Status == "" {
		event.Status = "PUBLISHED"
	}
	event.RegistrationsCount = 0
	event.CreatedAt = now()
	event.UpdatedAt = event.CreatedAt

	if _, err := d.events.InsertOne(ctx, event); err != nil {
		return dao.Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id string) (dao.Event, error) {
	var event dao.Event
	if err := d.events.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.Event{}, dao.ErrEventNotFound
		}

		return dao.Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context, filter dao.EventFilter) ([]dao.Event, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.OrganizerID != "" {
		query["organizerId"] = filter.OrganizerID
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := d.events.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	events := []dao.Event{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// Update sets the editable fields only, leaving registrationsCount to the
// registration DAO. The filter refuses a capacity below the live counter.
func (d *EventDAO) Update(ctx context.Context, event dao.Event) (dao.Event, error) {
	set := bson.M{
		"title":       event.Title,
		"description": event.Description,
		"date":        event.Date,
		"location":    event.Location,
		"capacity":    event.Capacity,
		"category":    event.Category,
		"status":      event.Status,
		"updatedAt":   now(),
	}
	update := bson.M{"$set": set}
	if event.ImageURL == "" {
		update["$unset"] = bson.M{"imageUrl": ""}
	} else {
		set["imageUrl"] = event.ImageURL
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	filter := bson.M{
		"_id":                event.ID,
		"registrationsCount": bson.M{"$lte": event.Capacity},
	}

	var updated dao.Event
	if err := d.events.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, err = d.FindByID(ctx, event.ID); err != nil {
				return dao.Event{}, err
			}

			return dao.Event{}, dao.ErrCapacityBelowRegistrations
		}

		return dao.Event{}, err
	}

	return updated, nil
}

func (d *EventDAO) Delete(ctx context.Context, id string) error {
	res, err := d.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return dao.ErrEventNotFound
	}

	return nil
}

// reserveSeat atomically increments registrationsCount while it is below capacity.
func (d *EventDAO) reserveSeat(ctx context.Context, eventID string) error {
	filter := bson.M{
		"_id":   eventID,
		"$expr": bson.M{"$lt": bson.A{"$registrationsCount", "$capacity"}},
	}
	update := bson.M{"$inc": bson.M{"registrationsCount": 1}}

	res, err := d.events.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 1 {
		return nil
	}

	if _, err = d.FindByID(ctx, eventID); err != nil {
		return err
	}

	return dao.ErrEventFull
}

func (d *EventDAO) releaseSeat(ctx context.Context, eventID string) error {
	filter := bson.M{
		"_id":                eventID,
		"registrationsCount": bson.M{"$gt": 0},
	}
	update := bson.M{"$inc": bson.M{"registrationsCount": -1}}

	_, err := d.events.UpdateOne(ctx, filter, update)

	return err
}
