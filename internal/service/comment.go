package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/authz"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
)

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	FindByID(ctx context.Context, id string) (domain.Comment, error)
	FindByEventID(ctx context.Context, eventID string) ([]domain.Comment, error)
	Update(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

type CommentService struct {
	repo      CommentRepository
	events    EventReader
	authz     Authorizer
	publisher Publisher
}

func NewCommentService(repo CommentRepository, events EventReader, authz Authorizer, publisher Publisher) *CommentService {
	return &CommentService{
		repo:      repo,
		events:    events,
		authz:     authz,
		publisher: publisher,
	}
}

func (s *CommentService) ListForEvent(ctx context.Context, eventID string) ([]domain.Comment, error) {
	comments, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEventID -> %w", err)
	}

	return comments, nil
}

func (s *CommentService) AverageRating(ctx context.Context, eventID string) (*float64, error) {
	comments, err := s.ListForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return domain.AverageRating(comments), nil
}

func (s *CommentService) AddComment(ctx context.Context, viewer domain.Viewer, comment domain.Comment) (domain.Comment, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Comment{}, err
	}
	if !s.authz.Can(viewer.Role, authz.ObjectComments, authz.ActionCreate) {
		return domain.Comment{}, ErrForbidden
	}

	event, err := s.events.FindByID(ctx, comment.EventID)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	comment.ID = ""
	comment.EventID = event.ID
	comment.UserID = viewer.UserID

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	publish(ctx, s.publisher, pubsub.TopicCommentAdded, created)

	return created, nil
}

// UpdateComment is reserved to the author and admins.
func (s *CommentService) UpdateComment(ctx context.Context, viewer domain.Viewer, id string, patch domain.CommentPatch) (domain.Comment, error) {
	if err := requireViewer(viewer); err != nil {
		return domain.Comment{}, err
	}

	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !viewer.Is(comment.UserID) && !s.authz.Can(viewer.Role, authz.ObjectComments, authz.ActionManage) {
		return domain.Comment{}, ErrNotOwner
	}

	comment.Apply(patch)

	updated, err := s.repo.Update(ctx, comment)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteComment is allowed to the author, the event organizer and admins.
func (s *CommentService) DeleteComment(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}

	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	allowed := viewer.Is(comment.UserID) || s.authz.Can(viewer.Role, authz.ObjectComments, authz.ActionManage)
	if !allowed {
		event, err := s.events.FindByID(ctx, comment.EventID)
		if err != nil && !errors.Is(err, ErrEventNotFound) {
			return fmt.Errorf("s.events.FindByID -> %w", err)
		}
		allowed = err == nil && event.IsOrganizedBy(viewer.UserID)
	}
	if !allowed {
		return ErrNotOwner
	}

	if err = s.repo.Delete(ctx, comment.ID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
