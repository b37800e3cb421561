package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/authz"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
)

var ErrEventNotOpen = errors.New("event is not open for registration")

type RegistrationRepository interface {
	Create(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	FindByID(ctx context.Context, id string) (domain.Registration, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Registration, error)
	FindByEventID(ctx context.Context, eventID string) ([]domain.Registration, error)
	Update(ctx context.Context, registration domain.Registration, previous domain.RegistrationStatus) (domain.Registration, error)
}

type EventReader interface {
	FindByID(ctx context.Context, id string) (domain.Event, error)
}

type RegistrationService struct {
	repo      RegistrationRepository
	events    EventReader
	authz     Authorizer
	publisher Publisher
}

func NewRegistrationService(repo RegistrationRepository, events EventReader, authz Authorizer, publisher Publisher) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		events:    events,
		authz:     authz,
		publisher: publisher,
	}
}

// GetRegistration is visible to its owner, the event organizer and admins.
func (s *RegistrationService) GetRegistration(ctx context.Context, viewer domain.Viewer, id string) (domain.Registration, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Registration{}, err
	}

	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	canManage, err := s.canManage(ctx, viewer, registration)
	if err != nil {
		return domain.Registration{}, err
	}
	if !viewer.Is(registration.UserID) && !canManage {
		return domain.Registration{}, ErrNotOwner
	}

	return registration, nil
}

func (s *RegistrationService) ListMine(ctx context.Context, viewer domain.Viewer) ([]domain.Registration, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	registrations, err := s.repo.FindByUserID(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return registrations, nil
}

// ListForEvent returns all registrations of an event to its organizer and admins.
func (s *RegistrationService) ListForEvent(ctx context.Context, viewer domain.Viewer, eventID string) ([]domain.Registration, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if !s.canManageEvent(viewer, event) {
		return nil, ErrNotOwner
	}

	registrations, err := s.repo.FindByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEventID -> %w", err)
	}

	return registrations, nil
}

// Register signs the viewer up for a published event. The seat is taken
// atomically by the repository, which also rejects a second active
// registration of the same user.
func (s *RegistrationService) Register(ctx context.Context, viewer domain.Viewer, eventID, notes string) (domain.Registration, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Registration{}, err
	}
	if !s.authz.Can(viewer.Role, authz.ObjectRegistrations, authz.ActionCreate) {
		return domain.Registration{}, ErrForbidden
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.Status != domain.EventStatusPublished {
		return domain.Registration{}, ErrEventNotOpen
	}
	if event.IsFull() {
		return domain.Registration{}, ErrEventFull
	}

	created, err := s.repo.Create(ctx, domain.Registration{
		EventID: event.ID,
		UserID:  viewer.UserID,
		Status:  domain.RegistrationStatusPending,
		Notes:   notes,
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	publish(ctx, s.publisher, pubsub.TopicRegistrationCreated, created)

	return created, nil
}

// UpdateRegistration applies the patch. Owners may edit notes and cancel;
// the event organizer and admins may set any status.
func (s *RegistrationService) UpdateRegistration(ctx context.Context, viewer domain.Viewer, id string, patch domain.RegistrationPatch) (domain.Registration, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Registration{}, err
	}

	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	canManage, err := s.canManage(ctx, viewer, registration)
	if err != nil {
		return domain.Registration{}, err
	}
	if !canManage {
		if !viewer.Is(registration.UserID) {
			return domain.Registration{}, ErrNotOwner
		}
		if patch.Status != nil && *patch.Status != registration.Status && *patch.Status != domain.RegistrationStatusCancelled {
			return domain.Registration{}, ErrForbidden
		}
	}

	return s.save(ctx, registration, patch)
}

func (s *RegistrationService) CancelRegistration(ctx context.Context, viewer domain.Viewer, id string) (domain.Registration, error) {
	cancelled := domain.RegistrationStatusCancelled

	return s.UpdateRegistration(ctx, viewer, id, domain.RegistrationPatch{Status: &cancelled})
}

func (s *RegistrationService) save(ctx context.Context, registration domain.Registration, patch domain.RegistrationPatch) (domain.Registration, error) {
	previous := registration.Status
	registration.Apply(patch)

	updated, err := s.repo.Update(ctx, registration, previous)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	publish(ctx, s.publisher, pubsub.TopicRegistrationUpdated, updated)

	return updated, nil
}

// canManage reports whether the viewer organizes the registration's event or
// may manage any registration. A deleted event leaves only the latter.
func (s *RegistrationService) canManage(ctx context.Context, viewer domain.Viewer, registration domain.Registration) (bool, error) {
	if s.authz.Can(viewer.Role, authz.ObjectRegistrations, authz.ActionManage) {
		return true, nil
	}

	event, err := s.events.FindByID(ctx, registration.EventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	return s.canManageEvent(viewer, event), nil
}

func (s *RegistrationService) canManageEvent(viewer domain.Viewer, event domain.Event) bool {
	return event.IsOrganizedBy(viewer.UserID) || s.authz.Can(viewer.Role, authz.ObjectRegistrations, authz.ActionManage)
}
