package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventhub"

var (
	GraphQLRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_requests_total",
			Help:      "GraphQL operations executed, by transport and outcome.",
		},
		[]string{"transport", "outcome"},
	)

	GraphQLDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graphql_request_duration_seconds",
			Help:      "Time spent executing GraphQL queries and mutations over HTTP.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open graphql-transport-ws connections.",
		},
	)

	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graphql_active_subscriptions",
			Help:      "Running GraphQL subscriptions.",
		},
	)

	MessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pubsub_messages_published_total",
			Help:      "Messages published to the in-process broker, by topic.",
		},
		[]string{"topic"},
	)

	PublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pubsub_publish_failures_total",
			Help:      "Messages that could not be published, by topic.",
		},
		[]string{"topic"},
	)
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func Outcome(hasErrors bool) string {
	if hasErrors {
		return OutcomeError
	}

	return OutcomeOK
}
