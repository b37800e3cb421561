package service

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/authz"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindAll(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id string) error
}

type EventService struct {
	repo      EventRepository
	authz     Authorizer
	publisher Publisher
}

func NewEventService(repo EventRepository, authz Authorizer, publisher Publisher) *EventService {
	return &EventService{
		repo:      repo,
		authz:     authz,
		publisher: publisher,
	}
}

func (s *EventService) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	events, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, nil
}

func (s *EventService) ListOrganizedBy(ctx context.Context, viewer domain.Viewer) ([]domain.Event, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	return s.ListEvents(ctx, domain.EventFilter{OrganizerID: viewer.UserID})
}

// CreateEvent stores the event with the caller as organizer.
func (s *EventService) CreateEvent(ctx context.Context, viewer domain.Viewer, event domain.Event) (domain.Event, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Event{}, err
	}
	if !s.authz.Can(viewer.Role, authz.ObjectEvents, authz.ActionCreate) {
		return domain.Event{}, ErrForbidden
	}

	event.ID = ""
	event.OrganizerID = viewer.UserID
	event.RegistrationsCount = 0
	if event.Status == "" {
		event.Status = domain.EventStatusPublished
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	publish(ctx, s.publisher, pubsub.TopicEventCreated, created)

	return created, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, viewer domain.Viewer, id string, patch domain.EventPatch) (domain.Event, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Event{}, err
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !s.CanManage(viewer, event) {
		return domain.Event{}, ErrNotOwner
	}
	if patch.Capacity != nil && *patch.Capacity < event.RegistrationsCount {
		return domain.Event{}, ErrCapacityBelowRegistrations
	}

	event.Apply(patch)

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	publish(ctx, s.publisher, pubsub.TopicEventUpdated, updated)

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !s.CanManage(viewer, event) {
		return ErrNotOwner
	}

	if err = s.repo.Delete(ctx, event.ID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// CanManage reports whether the viewer organizes the event or may manage any event.
func (s *EventService) CanManage(viewer domain.Viewer, event domain.Event) bool {
	if !viewer.IsAuthenticated() {
		return false
	}

	return event.IsOrganizedBy(viewer.UserID) || s.authz.Can(viewer.Role, authz.ObjectEvents, authz.ActionManage)
}
