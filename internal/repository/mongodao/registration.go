package mongodao

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

// RegistrationDAO keeps the event counters in step with registrations.
// Standalone mongo servers have no multi-document transactions, so a failed
// write after a seat reservation is compensated by releasing the seat.
type RegistrationDAO struct {
	registrations *mongo.Collection
	events        *EventDAO
}

func NewRegistrationDAO(db *mongo.Database) *RegistrationDAO {
	return &RegistrationDAO{
		registrations: db.Collection(registrationsCollection),
		events:        NewEventDAO(db),
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, registration dao.Registration) (dao.Registration, error) {
	if registration.ID == "" {
		registration.ID = dao.NewID()
	}
	registration.CreatedAt = now()
	registration.UpdatedAt = registration.CreatedAt

	if registration.Active {
		if err := d.events.reserveSeat(ctx, registration.EventID); err != nil {
			return dao.Registration{}, err
		}
	}

	if _, err := d.registrations.InsertOne(ctx, registration); err != nil {
		if registration.Active {
			d.compensate(ctx, registration.EventID, -1)
		}
		if mongo.IsDuplicateKeyError(err) {
			return dao.Registration{}, dao.ErrRegistrationExists
		}

		return dao.Registration{}, err
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id string) (dao.Registration, error) {
	var registration dao.Registration
	if err := d.registrations.FindOne(ctx, bson.M{"_id": id}).Decode(&registration); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.Registration{}, dao.ErrRegistrationNotFound
		}

		return dao.Registration{}, err
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByUserID(ctx context.Context, userID string) ([]dao.Registration, error) {
	return d.find(ctx, bson.M{"userId": userID}, -1)
}

func (d *RegistrationDAO) FindByEventID(ctx context.Context, eventID string) ([]dao.Registration, error) {
	return d.find(ctx, bson.M{"eventId": eventID}, 1)
}

func (d *RegistrationDAO) find(ctx context.Context, filter bson.M, order int) ([]dao.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: order}})
	cursor, err := d.registrations.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	registrations := []dao.Registration{}
	if err = cursor.All(ctx, &registrations); err != nil {
		return nil, err
	}

	return registrations, nil
}

// Update writes the registration only while its active flag still equals
// wasActive. A seat is reserved before a reactivation and released after a
// cancellation matched, so racing requests move the counter once.
func (d *RegistrationDAO) Update(ctx context.Context, registration dao.Registration, wasActive bool) (dao.Registration, error) {
	reserve := registration.Active && !wasActive
	release := !registration.Active && wasActive

	if reserve {
		if err := d.events.reserveSeat(ctx, registration.EventID); err != nil {
			return dao.Registration{}, err
		}
	}

	filter := bson.M{"_id": registration.ID, "active": wasActive}
	update := bson.M{"$set": bson.M{
		"status":    registration.Status,
		"notes":     registration.Notes,
		"active":    registration.Active,
		"updatedAt": now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated dao.Registration
	err := d.registrations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if reserve {
			d.compensate(ctx, registration.EventID, -1)
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.Registration{}, d.missed(ctx, registration.ID)
		}
		if mongo.IsDuplicateKeyError(err) {
			return dao.Registration{}, dao.ErrRegistrationExists
		}

		return dao.Registration{}, err
	}

	if release {
		if err = d.events.releaseSeat(ctx, registration.EventID); err != nil {
			zap.L().Error("failed to release seat",
				zap.String("event_id", registration.EventID),
				zap.String("registration_id", registration.ID),
				zap.Error(err),
			)
		}
	}

	return updated, nil
}

func (d *RegistrationDAO) missed(ctx context.Context, id string) error {
	n, err := d.registrations.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return dao.ErrRegistrationNotFound
	}

	return dao.ErrRegistrationChanged
}

// compensate undoes a counter move after a failed registration write.
func (d *RegistrationDAO) compensate(ctx context.Context, eventID string, delta int) {
	if delta == 0 {
		return
	}

	_, err := d.events.events.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$inc": bson.M{"registrationsCount": delta}})
	if err != nil {
		zap.L().Error("failed to compensate registrations count",
			zap.String("event_id", eventID),
			zap.Int("delta", delta),
			zap.Error(err),
		)
	}
}
