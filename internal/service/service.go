package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller's role does not allow the operation.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrNotOwner means the caller neither owns the record nor may manage others' records.
	ErrNotOwner = errors.New("unauthorized")

	ErrEventNotFound        = repository.ErrEventNotFound
	ErrEventFull            = repository.ErrEventFull
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrRegistrationChanged  = repository.ErrRegistrationChanged
	ErrAlreadyRegistered    = repository.ErrRegistrationExists
	ErrCommentNotFound      = repository.ErrCommentNotFound

	// ErrCapacityBelowRegistrations also covers a registration that lands
	// between the check and the write.
	ErrCapacityBelowRegistrations = repository.ErrCapacityBelowRegistrations
)

// Authorizer answers role based permission questions.
type Authorizer interface {
	Can(role domain.Role, object, action string) bool
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

func requireViewer(viewer domain.Viewer) error {
	if !viewer.IsAuthenticated() {
		return ErrUnauthenticated
	}

	return nil
}

// publish never fails the calling mutation; subscribers are best effort.
func publish(ctx context.Context, p Publisher, topic string, payload interface{}) {
	if p == nil {
		return
	}

	if err := p.Publish(ctx, topic, payload); err != nil {
		zap.L().Error("failed to publish",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
