package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "bridge",
		Name:      "stripe_webhook_events_total",
		Help:      "Inbound Stripe webhook events partitioned by type and outcome.",
	}, []string{"type", "outcome"})

	provisionAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "bridge",
		Name:      "provision_attempts_total",
		Help:      "Outbound provisioning call attempts partitioned by outcome.",
	}, []string{"outcome"})
)
