package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventFull     = errors.New("event is full")

	ErrCapacityBelowRegistrations = errors.New("capacity cannot be lower than the current number of registrations")
)

type Event struct {
	ID string `gorm:"type:uuid;primaryKey" bson:"_id"`

	Title       string    `gorm:"not null" bson:"title"`
	Description string    `gorm:"not null" bson:"description"`
	Date        time.Time `gorm:"not null;index" bson:"date"`
	Location    string    `gorm:"not null" bson:"location"`
	Capacity    int       `gorm:"not null" bson:"capacity"`
	Category    string    `gorm:"not null;index" bson:"category"`
	Status      string    `gorm:"not null;index;default:PUBLISHED" bson:"status"`
	ImageURL    string    `bson:"imageUrl,omitempty"`
	OrganizerID string    `gorm:"type:uuid;not null;index" bson:"organizerId"`

	RegistrationsCount int `gorm:"not null;default:0" bson:"registrationsCount"`

	CreatedAt time.Time `gorm:"not null" bson:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updatedAt"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}

	return nil
}

// EventFilter narrows FindAll. Empty fields are ignored.
type EventFilter struct {
	Status      string
	Category    string
	OrganizerID string
	Limit       int
	Offset      int
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	// The counter only moves through registrations.
	event.RegistrationsCount = 0

	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id string) (Event, error) {
	if !IsValidID(id) {
		return Event{}, ErrEventNotFound
	}

	var event Event
	result := d.db.WithContext(ctx).Where("id = ?", id).First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context, filter EventFilter) ([]Event, error) {
	query := d.db.WithContext(ctx).Model(&Event{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.OrganizerID != "" {
		if !IsValidID(filter.OrganizerID) {
			return []Event{}, nil
		}
		query = query.Where("organizer_id = ?", filter.OrganizerID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var events []Event
	if result := query.Order("date asc").Order("created_at asc").Find(&events); result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// Update writes every editable column. The registrations counter is never
// written here so concurrent registrations are not lost, and the row only
// matches while the counter still fits the new capacity.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	if !IsValidID(event.ID) {
		return Event{}, ErrEventNotFound
	}

	result := d.db.WithContext(ctx).
		Model(&Event{ID: event.ID}).
		Where("registrations_count <= ?", event.Capacity).
		Select("title", "description", "date", "location", "capacity", "category", "status", "image_url", "updated_at").
		Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, event.ID); err != nil {
			return Event{}, err
		}

		return Event{}, ErrCapacityBelowRegistrations
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) Delete(ctx context.Context, id string) error {
	if !IsValidID(id) {
		return ErrEventNotFound
	}

	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// reserveSeat increments the registrations counter unless the event is full.
func reserveSeat(tx *gorm.DB, eventID string) error {
	result := tx.Model(&Event{}).
		Where("id = ? AND registrations_count < capacity", eventID).
		UpdateColumn("registrations_count", gorm.Expr("registrations_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := tx.Model(&Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}

	return ErrEventFull
}

func releaseSeat(tx *gorm.DB, eventID string) error {
	return tx.Model(&Event{}).
		Where("id = ? AND registrations_count > 0", eventID).
		UpdateColumn("registrations_count", gorm.Expr("registrations_count - 1")).
		Error
}
