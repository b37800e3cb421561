// Package graph serves the GraphQL API on top of the services.
package graph

import (
	"context"
	_ "embed"
	"time"

	"github.com/graph-gophers/graphql-go"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/apperr"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
)

//go:embed schema.graphql
var Schema string

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
}

type UserService interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context, viewer domain.Viewer) ([]domain.User, error)
	UpdateUser(ctx context.Context, viewer domain.Viewer, id string, patch domain.UserPatch) (domain.User, error)
	DeleteUser(ctx context.Context, viewer domain.Viewer, id string) error
}

type EventService interface {
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	ListOrganizedBy(ctx context.Context, viewer domain.Viewer) ([]domain.Event, error)
	CreateEvent(ctx context.Context, viewer domain.Viewer, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, viewer domain.Viewer, id string, patch domain.EventPatch) (domain.Event, error)
	DeleteEvent(ctx context.Context, viewer domain.Viewer, id string) error
	CanManage(viewer domain.Viewer, event domain.Event) bool
}

type RegistrationService interface {
	GetRegistration(ctx context.Context, viewer domain.Viewer, id string) (domain.Registration, error)
	ListMine(ctx context.Context, viewer domain.Viewer) ([]domain.Registration, error)
	ListForEvent(ctx context.Context, viewer domain.Viewer, eventID string) ([]domain.Registration, error)
	Register(ctx context.Context, viewer domain.Viewer, eventID, notes string) (domain.Registration, error)
	UpdateRegistration(ctx context.Context, viewer domain.Viewer, id string, patch domain.RegistrationPatch) (domain.Registration, error)
	CancelRegistration(ctx context.Context, viewer domain.Viewer, id string) (domain.Registration, error)
}

type CommentService interface {
	ListForEvent(ctx context.Context, eventID string) ([]domain.Comment, error)
	AverageRating(ctx context.Context, eventID string) (*float64, error)
	AddComment(ctx context.Context, viewer domain.Viewer, comment domain.Comment) (domain.Comment, error)
	UpdateComment(ctx context.Context, viewer domain.Viewer, id string, patch domain.CommentPatch) (domain.Comment, error)
	DeleteComment(ctx context.Context, viewer domain.Viewer, id string) error
}

type Services struct {
	Auth          AuthService
	Users         UserService
	Events        EventService
	Registrations RegistrationService
	Comments      CommentService
}

// Resolver is the root of the schema. Query, Mutation and Subscription
// fields are all methods on it.
type Resolver struct {
	svc        Services
	subscriber pubsub.Subscriber
	now        func() time.Time
}

func NewResolver(svc Services, subscriber pubsub.Subscriber) *Resolver {
	return &Resolver{
		svc:        svc,
		subscriber: subscriber,
		now:        time.Now,
	}
}

func NewSchema(resolver *Resolver, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	opts = append([]graphql.SchemaOpt{graphql.MaxDepth(12)}, opts...)

	return graphql.ParseSchema(Schema, resolver, opts...)
}

// fail converts err so that the executor renders its code under "extensions".
// The executor only inspects the returned value itself, so the conversion has
// to happen here rather than further down the chain.
func fail(err error) error {
	if err == nil {
		return nil
	}

	return apperr.From(err)
}
