package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/metrics"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pubsub"
)

func (r *Resolver) EventCreated(ctx context.Context) (<-chan *eventResolver, error) {
	return subscribe(ctx, r, pubsub.TopicEventCreated, nil, func(e domain.Event) *eventResolver {
		return &eventResolver{root: r, e: e}
	})
}

func (r *Resolver) EventUpdated(ctx context.Context) (<-chan *eventResolver, error) {
	return subscribe(ctx, r, pubsub.TopicEventUpdated, nil, func(e domain.Event) *eventResolver {
		return &eventResolver{root: r, e: e}
	})
}

func (r *Resolver) RegistrationCreated(ctx context.Context, args struct{ EventID graphql.ID }) (<-chan *registrationResolver, error) {
	keep := func(reg domain.Registration) bool {
		return domain.SameID(reg.EventID, string(args.EventID))
	}

	return subscribe(ctx, r, pubsub.TopicRegistrationCreated, keep, func(reg domain.Registration) *registrationResolver {
		return &registrationResolver{root: r, reg: reg}
	})
}

func (r *Resolver) RegistrationUpdated(ctx context.Context, args struct{ EventID graphql.ID }) (<-chan *registrationResolver, error) {
	keep := func(reg domain.Registration) bool {
		return domain.SameID(reg.EventID, string(args.EventID))
	}

	return subscribe(ctx, r, pubsub.TopicRegistrationUpdated, keep, func(reg domain.Registration) *registrationResolver {
		return &registrationResolver{root: r, reg: reg}
	})
}

func (r *Resolver) CommentAdded(ctx context.Context, args struct{ EventID graphql.ID }) (<-chan *commentResolver, error) {
	keep := func(c domain.Comment) bool {
		return domain.SameID(c.EventID, string(args.EventID))
	}

	return subscribe(ctx, r, pubsub.TopicCommentAdded, keep, func(c domain.Comment) *commentResolver {
		return &commentResolver{root: r, c: c}
	})
}

// subscribe decodes topic payloads into T and wraps each kept one with wrap.
// The returned channel closes with ctx.
func subscribe[T any, R any](ctx context.Context, r *Resolver, topic string, keep func(T) bool, wrap func(T) R) (<-chan R, error) {
	payloads, err := pubsub.Subscribe(ctx, r.subscriber, topic, keep)
	if err != nil {
		return nil, fail(err)
	}

	metrics.ActiveSubscriptions.Inc()

	out := make(chan R)
	go func() {
		defer close(out)
		defer metrics.ActiveSubscriptions.Dec()

		for payload := range payloads {
			select {
			case out <- wrap(payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
