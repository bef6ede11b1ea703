package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chairtime_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chairtime_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	slotQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chairtime_slot_query_duration_seconds",
		Help:    "Duration of availability slot computations",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	bookingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chairtime_booking_attempts_total",
		Help: "Count of booking write attempts by outcome",
	}, []string{"result"})

	webhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chairtime_webhook_events_total",
		Help: "Count of inbound payment webhook events by outcome",
	}, []string{"result"})

	intentsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chairtime_payment_intents_swept_total",
		Help: "Count of expired payment intents cancelled by the sweeper",
	})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chairtime_rate_limited_total",
		Help: "Count of requests rejected by the shared rate limiter",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSlotQuery records the duration of a slot computation with a result label.
func ObserveSlotQuery(result string, duration time.Duration) {
	slotQueryDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveBookingAttempt counts a booking write by outcome (created, overlap, error).
func ObserveBookingAttempt(result string) {
	bookingAttempts.WithLabelValues(result).Inc()
}

// ObserveWebhook counts an inbound webhook by outcome (processed, duplicate, rejected).
func ObserveWebhook(result string) {
	webhookEvents.WithLabelValues(result).Inc()
}

// AddSweptIntents counts expired intents cancelled by the sweeper.
func AddSweptIntents(n int64) {
	if n > 0 {
		intentsSwept.Add(float64(n))
	}
}

// IncRateLimited counts a rejected request.
func IncRateLimited() {
	rateLimited.Inc()
}
