package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/middleware"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/apperr"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

func (r *Resolver) Register(ctx context.Context, args struct{ Input RegisterInput }) (*authPayloadResolver, error) {
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	user, token, err := r.svc.Auth.Signup(ctx, args.Input.toDomain())
	if err != nil {
		return nil, fail(err)
	}

	return &authPayloadResolver{token: token, user: user}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Input LoginInput }) (*authPayloadResolver, error) {
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	user, token, err := r.svc.Auth.Login(ctx, args.Input.Email, args.Input.Password)
	if err != nil {
		return nil, fail(err)
	}

	return &authPayloadResolver{token: token, user: user}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    graphql.ID
	Input UpdateUserInput
}) (*userResolver, error) {
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	user, err := r.svc.Users.UpdateUser(ctx, middleware.ViewerFromContext(ctx), string(args.ID), args.Input.toPatch())
	if err != nil {
		return nil, fail(err)
	}

	return &userResolver{u: user}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.svc.Users.DeleteUser(ctx, middleware.ViewerFromContext(ctx), string(args.ID)); err != nil {
		return false, fail(err)
	}

	return true, nil
}

func (r *Resolver) CreateEvent(ctx context.Context, args struct{ Input CreateEventInput }) (*eventResolver, error) {
	viewer := middleware.ViewerFromContext(ctx)
	if !viewer.IsAuthenticated() {
		return nil, apperr.Unauthenticated("")
	}
	if err := args.Input.Validate(r.now); err != nil {
		return nil, apperr.Validation(err)
	}

	event, err := r.svc.Events.CreateEvent(ctx, viewer, args.Input.toDomain())
	if err != nil {
		return nil, fail(err)
	}

	return &eventResolver{root: r, e: event}, nil
}

func (r *Resolver) UpdateEvent(ctx context.Context, args struct {
	ID    graphql.ID
	Input UpdateEventInput
}) (*eventResolver, error) {
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	event, err := r.svc.Events.UpdateEvent(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.ID)), args.Input.toPatch())
	if err != nil {
		return nil, fail(err)
	}

	return &eventResolver{root: r, e: event}, nil
}

func (r *Resolver) DeleteEvent(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.svc.Events.DeleteEvent(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.ID))); err != nil {
		return false, fail(err)
	}

	return true, nil
}

func (r *Resolver) CreateRegistration(ctx context.Context, args struct{ Input CreateRegistrationInput }) (*registrationResolver, error) {
	viewer := middleware.ViewerFromContext(ctx)
	if !viewer.IsAuthenticated() {
		return nil, apperr.Unauthenticated("")
	}
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	var notes string
	if args.Input.Notes != nil {
		notes = *args.Input.Notes
	}

	registration, err := r.svc.Registrations.Register(ctx, viewer, domain.NormalizeID(string(args.Input.EventID)), notes)
	if err != nil {
		return nil, fail(err)
	}

	return &registrationResolver{root: r, reg: registration}, nil
}

func (r *Resolver) UpdateRegistration(ctx context.Context, args struct {
	ID    graphql.ID
	Input UpdateRegistrationInput
}) (*registrationResolver, error) {
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	registration, err := r.svc.Registrations.UpdateRegistration(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.ID)), args.Input.toPatch())
	if err != nil {
		return nil, fail(err)
	}

	return &registrationResolver{root: r, reg: registration}, nil
}

func (r *Resolver) CancelRegistration(ctx context.Context, args struct{ ID graphql.ID }) (*registrationResolver, error) {
	registration, err := r.svc.Registrations.CancelRegistration(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.ID)))
	if err != nil {
		return nil, fail(err)
	}

	return &registrationResolver{root: r, reg: registration}, nil
}

func (r *Resolver) CreateComment(ctx context.Context, args struct{ Input CreateCommentInput }) (*commentResolver, error) {
	viewer := middleware.ViewerFromContext(ctx)
	if !viewer.IsAuthenticated() {
		return nil, apperr.Unauthenticated("")
	}
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	comment, err := r.svc.Comments.AddComment(ctx, viewer, args.Input.toDomain())
	if err != nil {
		return nil, fail(err)
	}

	return &commentResolver{root: r, c: comment}, nil
}

func (r *Resolver) UpdateComment(ctx context.Context, args struct {
	ID    graphql.ID
	Input UpdateCommentInput
}) (*commentResolver, error) {
	if err := args.Input.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	comment, err := r.svc.Comments.UpdateComment(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.ID)), args.Input.toPatch())
	if err != nil {
		return nil, fail(err)
	}

	return &commentResolver{root: r, c: comment}, nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.svc.Comments.DeleteComment(ctx, middleware.ViewerFromContext(ctx), domain.NormalizeID(string(args.ID))); err != nil {
		return false, fail(err)
	}

	return true, nil
}
