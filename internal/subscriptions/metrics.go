package subscriptions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var subscriptionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kinfolk_subscription_transitions_total",
		Help: "Total number of subscription state transitions",
	},
	[]string{"transition"},
)

func recordTransition(transition string) {
	subscriptionTransitionsTotal.WithLabelValues(transition).Inc()
}
