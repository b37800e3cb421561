package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationExists   = errors.New("user is already registered for this event")
	ErrRegistrationChanged  = errors.New("registration was changed by another request")
)

const activeRegistrationIndex = "idx_registrations_active_event_user"

type Registration struct {
	ID string `gorm:"type:uuid;primaryKey" bson:"_id"`

	EventID string `gorm:"type:uuid;not null;index" bson:"eventId"`
	UserID  string `gorm:"type:uuid;not null;index" bson:"userId"`
	Status  string `gorm:"not null;default:PENDING" bson:"status"`
	Notes   string `bson:"notes,omitempty"`
	// Active is false once cancelled. A partial unique index on it keeps one
	// live registration per user and event.
	Active bool `gorm:"not null" bson:"active"`

	CreatedAt time.Time `gorm:"not null" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updatedAt"`
}

func (r *Registration) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}

	return nil
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// Insert reserves a seat on the event and stores the registration in one
// transaction.
func (d *RegistrationDAO) Insert(ctx context.Context, registration Registration) (Registration, error) {
	if !IsValidID(registration.EventID) {
		return Registration{}, ErrEventNotFound
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if registration.Active {
			if err := reserveSeat(tx, registration.EventID); err != nil {
				return err
			}
		}

		if err := tx.Create(&registration).Error; err != nil {
			if isUniqueViolation(err, activeRegistrationIndex) {
				return ErrRegistrationExists
			}

			return err
		}

		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id string) (Registration, error) {
	if !IsValidID(id) {
		return Registration{}, ErrRegistrationNotFound
	}

	var registration Registration
	result := d.db.WithContext(ctx).Where("id = ?", id).First(&registration)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByUserID(ctx context.Context, userID string) ([]Registration, error) {
	if !IsValidID(userID) {
		return []Registration{}, nil
	}

	var registrations []Registration
	result := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) FindByEventID(ctx context.Context, eventID string) ([]Registration, error) {
	if !IsValidID(eventID) {
		return []Registration{}, nil
	}

	var registrations []Registration
	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at asc").Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

// Update stores the registration if its active flag still equals wasActive,
// then moves the event counter when the flag flips. Both writes share one
// transaction, so only one of two racing cancellations releases the seat. A
// flag changed by someone else fails with ErrRegistrationChanged.
func (d *RegistrationDAO) Update(ctx context.Context, registration Registration, wasActive bool) (Registration, error) {
	if !IsValidID(registration.ID) {
		return Registration{}, ErrRegistrationNotFound
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Registration{ID: registration.ID}).
			Where("active = ?", wasActive).
			Select("status", "notes", "active", "updated_at").
			Updates(&registration)
		if result.Error != nil {
			if isUniqueViolation(result.Error, activeRegistrationIndex) {
				return ErrRegistrationExists
			}

			return result.Error
		}
		if result.RowsAffected == 0 {
			return registrationMissed(tx, registration.ID)
		}

		switch {
		case registration.Active && !wasActive:
			return reserveSeat(tx, registration.EventID)
		case !registration.Active && wasActive:
			return releaseSeat(tx, registration.EventID)
		}

		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	return d.FindByID(ctx, registration.ID)
}

// registrationMissed tells a missing registration from one whose state moved.
func registrationMissed(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&Registration{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRegistrationNotFound
	}

	return ErrRegistrationChanged
}
