package domain

import (
	"strings"
	"time"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

var EventStatuses = []EventStatus{EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted}

type EventCategory string

const (
	EventCategoryConference EventCategory = "CONFERENCE"
	EventCategoryWorkshop   EventCategory = "WORKSHOP"
	EventCategorySeminar    EventCategory = "SEMINAR"
	EventCategoryNetworking EventCategory = "NETWORKING"
	EventCategoryConcert    EventCategory = "CONCERT"
	EventCategorySports     EventCategory = "SPORTS"
	EventCategoryOther      EventCategory = "OTHER"
)

var EventCategories = []EventCategory{
	EventCategoryConference,
	EventCategoryWorkshop,
	EventCategorySeminar,
	EventCategoryNetworking,
	EventCategoryConcert,
	EventCategorySports,
	EventCategoryOther,
}

type Event struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Date               time.Time     `json:"date"`
	Location           string        `json:"location"`
	Capacity           int           `json:"capacity"`
	Category           EventCategory `json:"category"`
	Status             EventStatus   `json:"status"`
	ImageURL           string        `json:"image_url,omitempty"`
	OrganizerID        string        `json:"organizer_id"`
	RegistrationsCount int           `json:"registrations_count"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (e Event) AvailableSpots() int {
	if spots := e.Capacity - e.RegistrationsCount; spots > 0 {
		return spots
	}

	return 0
}

func (e Event) IsFull() bool {
	return e.RegistrationsCount >= e.Capacity
}

func (e Event) IsOrganizedBy(userID string) bool {
	return userID != "" && SameID(e.OrganizerID, userID)
}

type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Capacity    *int
	Category    *EventCategory
	Status      *EventStatus
	ImageURL    *string
}

func (e *Event) Apply(p EventPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
}

// EventFilter narrows an event listing. Zero values mean no constraint.
type EventFilter struct {
	Status      EventStatus
	Category    EventCategory
	OrganizerID string
	Limit       int
	Offset      int
}

// NormalizeID returns the canonical form of an entity ID used for comparisons.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func SameID(a, b string) bool {
	return NormalizeID(a) == NormalizeID(b)
}
