package graph

import (
	"context"
	"errors"

	"github.com/graph-gophers/graphql-go"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/middleware"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/service"
)

type userResolver struct {
	u domain.User
}

func (r *userResolver) ID() graphql.ID          { return graphql.ID(r.u.ID) }
func (r *userResolver) Name() string            { return r.u.Name }
func (r *userResolver) Email() string           { return r.u.Email }
func (r *userResolver) Role() string            { return string(r.u.Role) }
func (r *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }
func (r *userResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.u.UpdatedAt} }

func newUsers(users []domain.User) []*userResolver {
	out := make([]*userResolver, len(users))
	for i := range users {
		out[i] = &userResolver{u: users[i]}
	}

	return out
}

type eventResolver struct {
	root *Resolver
	e    domain.Event
}

func (r *eventResolver) ID() graphql.ID          { return graphql.ID(r.e.ID) }
func (r *eventResolver) Title() string           { return r.e.Title }
func (r *eventResolver) Description() string     { return r.e.Description }
func (r *eventResolver) Date() graphql.Time      { return graphql.Time{Time: r.e.Date} }
func (r *eventResolver) Location() string        { return r.e.Location }
func (r *eventResolver) Capacity() int32         { return int32(r.e.Capacity) }
func (r *eventResolver) Category() string        { return string(r.e.Category) }
func (r *eventResolver) Status() string          { return string(r.e.Status) }
func (r *eventResolver) OrganizerID() graphql.ID { return graphql.ID(r.e.OrganizerID) }
func (r *eventResolver) RegistrationsCount() int32 {
	return int32(r.e.RegistrationsCount)
}
func (r *eventResolver) AvailableSpots() int32   { return int32(r.e.AvailableSpots()) }
func (r *eventResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.e.CreatedAt} }
func (r *eventResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.e.UpdatedAt} }

func (r *eventResolver) ImageURL() *string {
	if r.e.ImageURL == "" {
		return nil
	}

	return &r.e.ImageURL
}

func (r *eventResolver) Organizer(ctx context.Context) (*userResolver, error) {
	return r.root.lookupUser(ctx, r.e.OrganizerID)
}

func (r *eventResolver) AverageRating(ctx context.Context) (*float64, error) {
	avg, err := r.root.svc.Comments.AverageRating(ctx, r.e.ID)
	if err != nil {
		return nil, fail(err)
	}

	return avg, nil
}

// Registrations is only populated for the organizer and admins.
func (r *eventResolver) Registrations(ctx context.Context) ([]*registrationResolver, error) {
	viewer := middleware.ViewerFromContext(ctx)
	if !r.root.svc.Events.CanManage(viewer, r.e) {
		return []*registrationResolver{}, nil
	}

	registrations, err := r.root.svc.Registrations.ListForEvent(ctx, viewer, r.e.ID)
	if err != nil {
		return nil, fail(err)
	}

	return r.root.newRegistrations(registrations), nil
}

func (r *eventResolver) Comments(ctx context.Context) ([]*commentResolver, error) {
	comments, err := r.root.svc.Comments.ListForEvent(ctx, r.e.ID)
	if err != nil {
		return nil, fail(err)
	}

	return r.root.newComments(comments), nil
}

func (r *Resolver) newEvents(events []domain.Event) []*eventResolver {
	out := make([]*eventResolver, len(events))
	for i := range events {
		out[i] = &eventResolver{root: r, e: events[i]}
	}

	return out
}

type registrationResolver struct {
	root *Resolver
	reg  domain.Registration
}

func (r *registrationResolver) ID() graphql.ID          { return graphql.ID(r.reg.ID) }
func (r *registrationResolver) EventID() graphql.ID     { return graphql.ID(r.reg.EventID) }
func (r *registrationResolver) UserID() graphql.ID      { return graphql.ID(r.reg.UserID) }
func (r *registrationResolver) Status() string          { return string(r.reg.Status) }
func (r *registrationResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.reg.CreatedAt} }
func (r *registrationResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.reg.UpdatedAt} }

func (r *registrationResolver) Notes() *string {
	if r.reg.Notes == "" {
		return nil
	}

	return &r.reg.Notes
}

func (r *registrationResolver) Event(ctx context.Context) (*eventResolver, error) {
	return r.root.lookupEvent(ctx, r.reg.EventID)
}

func (r *registrationResolver) User(ctx context.Context) (*userResolver, error) {
	return r.root.lookupUser(ctx, r.reg.UserID)
}

func (r *Resolver) newRegistrations(registrations []domain.Registration) []*registrationResolver {
	out := make([]*registrationResolver, len(registrations))
	for i := range registrations {
		out[i] = &registrationResolver{root: r, reg: registrations[i]}
	}

	return out
}

type commentResolver struct {
	root *Resolver
	c    domain.Comment
}

func (r *commentResolver) ID() graphql.ID          { return graphql.ID(r.c.ID) }
func (r *commentResolver) EventID() graphql.ID     { return graphql.ID(r.c.EventID) }
func (r *commentResolver) UserID() graphql.ID      { return graphql.ID(r.c.UserID) }
func (r *commentResolver) Content() string         { return r.c.Content }
func (r *commentResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.c.CreatedAt} }
func (r *commentResolver) UpdatedAt() graphql.Time { return graphql.Time{Time: r.c.UpdatedAt} }

func (r *commentResolver) Rating() *int32 {
	if r.c.Rating == nil {
		return nil
	}
	rating := int32(*r.c.Rating)

	return &rating
}

func (r *commentResolver) Event(ctx context.Context) (*eventResolver, error) {
	return r.root.lookupEvent(ctx, r.c.EventID)
}

func (r *commentResolver) User(ctx context.Context) (*userResolver, error) {
	return r.root.lookupUser(ctx, r.c.UserID)
}

func (r *Resolver) newComments(comments []domain.Comment) []*commentResolver {
	out := make([]*commentResolver, len(comments))
	for i := range comments {
		out[i] = &commentResolver{root: r, c: comments[i]}
	}

	return out
}

type authPayloadResolver struct {
	token string
	user  domain.User
}

func (r *authPayloadResolver) Token() string       { return r.token }
func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.user} }

// lookupUser resolves a reference to a user that may have been deleted.
func (r *Resolver) lookupUser(ctx context.Context, id string) (*userResolver, error) {
	user, err := r.svc.Users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, nil
		}

		return nil, fail(err)
	}

	return &userResolver{u: user}, nil
}

// lookupEvent resolves a reference to an event that may have been deleted.
func (r *Resolver) lookupEvent(ctx context.Context, id string) (*eventResolver, error) {
	event, err := r.svc.Events.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return nil, nil
		}

		return nil, fail(err)
	}

	return &eventResolver{root: r, e: event}, nil
}
