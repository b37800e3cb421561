// Package pubsub fans mutation events out to GraphQL subscriptions inside
// one process.
package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/metrics"
)

const (
	TopicEventCreated        = "EVENT_CREATED"
	TopicEventUpdated        = "EVENT_UPDATED"
	TopicRegistrationCreated = "REGISTRATION_CREATED"
	TopicRegistrationUpdated = "REGISTRATION_UPDATED"
	TopicCommentAdded        = "COMMENT_ADDED"
)

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

type Broker struct {
	pubSub *gochannel.GoChannel
}

// NewBroker returns a broker that delivers each topic in publish order.
// Publish waits until every subscriber acked the previous message.
func NewBroker(outputChannelBuffer int64, logger *zap.Logger) *Broker {
	return &Broker{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            outputChannelBuffer,
				BlockPublishUntilSubscriberAck: true,
			},
			newZapAdapter(logger),
		),
	}
}

// Publish encodes payload as JSON and hands it to every current subscriber of topic.
func (b *Broker) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(context.WithoutCancel(ctx))

	if err = b.pubSub.Publish(topic, msg); err != nil {
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return fmt.Errorf("b.pubSub.Publish(%s) -> %w", topic, err)
	}

	metrics.MessagesPublished.WithLabelValues(topic).Inc()

	return nil
}

// Subscribe returns raw messages of topic until ctx is done. Callers must Ack them.
func (b *Broker) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Broker) Close() error {
	return b.pubSub.Close()
}

// Subscribe decodes messages of topic into T and forwards those keep accepts.
// A nil keep forwards everything. The returned channel closes when ctx is done.
func Subscribe[T any](ctx context.Context, sub Subscriber, topic string, keep func(T) bool) (<-chan T, error) {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("sub.Subscribe(%s) -> %w", topic, err)
	}

	out := make(chan T)
	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var payload T
				err := json.Unmarshal(msg.Payload, &payload)
				msg.Ack()
				if err != nil {
					zap.L().Warn("dropping undecodable message",
						zap.String("topic", topic),
						zap.String("message_uuid", msg.UUID),
						zap.Error(err),
					)
					continue
				}
				if keep != nil && !keep(payload) {
					continue
				}

				select {
				case out <- payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
