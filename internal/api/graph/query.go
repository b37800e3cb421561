package graph

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/graph-gophers/graphql-go"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/middleware"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/apperr"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pkg/rules"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/service"
)

const maxPageSize = 100

// Me returns null for anonymous callers instead of failing.
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	viewer := middleware.ViewerFromContext(ctx)
	if !viewer.IsAuthenticated() {
		return nil, nil
	}

	return r.lookupUser(ctx, viewer.UserID)
}

func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	if !middleware.ViewerFromContext(ctx).IsAuthenticated() {
		return nil, fail(service.ErrUnauthenticated)
	}

	user, err := r.svc.Users.GetUser(ctx, string(args.ID))
	if err != nil {
		return nil, fail(err)
	}

	return &userResolver{u: user}, nil
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	users, err := r.svc.Users.ListUsers(ctx, middleware.ViewerFromContext(ctx))
	if err != nil {
		return nil, fail(err)
	}

	return newUsers(users), nil
}

func (r *Resolver) Event(ctx context.Context, args struct{ ID graphql.ID }) (*eventResolver, error) {
	event, err := r.svc.Events.GetEvent(ctx, string(args.ID))
	if err != nil {
		return nil, fail(err)
	}

	return &eventResolver{root: r, e: event}, nil
}

type eventsArgs struct {
	Status      *string
	Category    *string
	OrganizerID *graphql.ID
	Limit       *int32
	Offset      *int32
}

func (a *eventsArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Status, rules.EventStatusIn()),
		validation.Field(&a.Category, rules.EventCategoryIn()),
		validation.Field(&a.Limit, validation.Min(0), validation.Max(maxPageSize)),
		validation.Field(&a.Offset, validation.Min(0)),
	)
}

func (a *eventsArgs) filter() domain.EventFilter {
	var filter domain.EventFilter
	if a.Status != nil {
		filter.Status = domain.EventStatus(*a.Status)
	}
	if a.Category != nil {
		filter.Category = domain.EventCategory(*a.Category)
	}
	if a.OrganizerID != nil {
		filter.OrganizerID = domain.NormalizeID(string(*a.OrganizerID))
	}
	if a.Limit != nil {
		filter.Limit = int(*a.Limit)
	}
	if a.Offset != nil {
		filter.Offset = int(*a.Offset)
	}

	return filter
}

func (r *Resolver) Events(ctx context.Context, args eventsArgs) ([]*eventResolver, error) {
	if err := args.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	events, err := r.svc.Events.ListEvents(ctx, args.filter())
	if err != nil {
		return nil, fail(err)
	}

	return r.newEvents(events), nil
}

func (r *Resolver) MyEvents(ctx context.Context) ([]*eventResolver, error) {
	events, err := r.svc.Events.ListOrganizedBy(ctx, middleware.ViewerFromContext(ctx))
	if err != nil {
		return nil, fail(err)
	}

	return r.newEvents(events), nil
}

func (r *Resolver) Registration(ctx context.Context, args struct{ ID graphql.ID }) (*registrationResolver, error) {
	registration, err := r.svc.Registrations.GetRegistration(ctx, middleware.ViewerFromContext(ctx), string(args.ID))
	if err != nil {
		return nil, fail(err)
	}

	return &registrationResolver{root: r, reg: registration}, nil
}

func (r *Resolver) MyRegistrations(ctx context.Context) ([]*registrationResolver, error) {
	registrations, err := r.svc.Registrations.ListMine(ctx, middleware.ViewerFromContext(ctx))
	if err != nil {
		return nil, fail(err)
	}

	return r.newRegistrations(registrations), nil
}

func (r *Resolver) EventRegistrations(ctx context.Context, args struct{ EventID graphql.ID }) ([]*registrationResolver, error) {
	registrations, err := r.svc.Registrations.ListForEvent(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.EventID)))
	if err != nil {
		return nil, fail(err)
	}

	return r.newRegistrations(registrations), nil
}

func (r *Resolver) Comments(ctx context.Context, args struct{ EventID graphql.ID }) ([]*commentResolver, error) {
	comments, err := r.svc.Comments.ListForEvent(ctx, domain.NormalizeID(string(args.EventID)))
	if err != nil {
		return nil, fail(err)
	}

	return r.newComments(comments), nil
}
