package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
	ErrEventFull     = dao.ErrEventFull

	ErrCapacityBelowRegistrations = dao.ErrCapacityBelowRegistrations
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id string) (dao.Event, error)
	FindAll(ctx context.Context, filter dao.EventFilter) ([]dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx, dao.EventFilter{
		Status:      string(filter.Status),
		Category:    string(filter.Category),
		OrganizerID: domain.NormalizeID(filter.OrganizerID),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.UpdatedAt = time.Now()

	updated, err := r.dao.Update(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if err := r.dao.Delete(ctx, domain.NormalizeID(id)); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) domainToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		Date:               e.Date.UTC(),
		Location:           e.Location,
		Capacity:           e.Capacity,
		Category:           string(e.Category),
		Status:             string(e.Status),
		ImageURL:           e.ImageURL,
		OrganizerID:        e.OrganizerID,
		RegistrationsCount: e.RegistrationsCount,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		Date:               e.Date,
		Location:           e.Location,
		Capacity:           e.Capacity,
		Category:           domain.EventCategory(e.Category),
		Status:             domain.EventStatus(e.Status),
		ImageURL:           e.ImageURL,
		OrganizerID:        e.OrganizerID,
		RegistrationsCount: e.RegistrationsCount,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}
