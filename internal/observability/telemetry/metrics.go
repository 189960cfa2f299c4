package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_bridge_gateway_requests_total",
		Help: "Total of Stripe API calls by operation and outcome",
	}, []string{"operation", "status"})

	GatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_bridge_gateway_latency_seconds",
		Help:    "Latency of Stripe API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_bridge_webhook_events_total",
		Help: "Total of webhook events received by type and verification outcome",
	}, []string{"type", "status"})

	CustomerResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_bridge_customer_resolutions_total",
		Help: "Remote customer id resolutions by outcome (cached, found, created, missing)",
	}, []string{"outcome"})

	MissingClientSecretTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_bridge_missing_client_secret_total",
		Help: "Payment intents returned by Stripe without a client secret",
	})
)

// ObserveGatewayCall records one Stripe call.
func ObserveGatewayCall(operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	GatewayLatency.WithLabelValues(operation).Observe(seconds)
}
