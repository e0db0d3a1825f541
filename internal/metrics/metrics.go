package metrics

import (
	"encoding/json"
	"sync"

	"shutterdesk/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shutterdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	projectsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "projects_created_total",
			Help:      "Projects created.",
		},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "project_status_changes_total",
			Help:      "Status transitions by target status.",
		},
		[]string{"status"},
	)

	paymentsPosted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "payments_posted_total",
			Help:      "Payments posted.",
		},
	)

	paymentsReversed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "payments_reversed_total",
			Help:      "Payments reversed.",
		},
	)

	paymentAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "payment_amount_total",
			Help:      "Posted payment volume.",
		},
	)

	reversedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "reversed_amount_total",
			Help:      "Reversed payment volume.",
		},
	)

	revisionsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shutterdesk",
			Name:      "revisions_recorded_total",
			Help:      "Revision rounds recorded.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			requestDuration,
			projectsCreated,
			statusChanges,
			paymentsPosted,
			paymentsReversed,
			paymentAmount,
			reversedAmount,
			revisionsRecorded,
		)
	})
}

// IncHTTP increments the counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// ObserveDuration records request latency for an endpoint.
func ObserveDuration(endpoint string, seconds float64) {
	requestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// Subscribe wires the domain counters to the event bus.
func Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventProjectCreated, func(*events.Event) error {
		projectsCreated.Inc()
		return nil
	})

	bus.Subscribe(events.EventStatusChanged, func(e *events.Event) error {
		var payload events.ProjectEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		statusChanges.WithLabelValues(payload.Status).Inc()
		return nil
	})

	bus.Subscribe(events.EventPaymentPosted, func(e *events.Event) error {
		var payload events.PaymentEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		paymentsPosted.Inc()
		paymentAmount.Add(float64(payload.Amount))
		return nil
	})

	bus.Subscribe(events.EventPaymentReversed, func(e *events.Event) error {
		var payload events.PaymentEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		paymentsReversed.Inc()
		reversedAmount.Add(float64(payload.Amount))
		return nil
	})

	bus.Subscribe(events.EventRevisionRecorded, func(*events.Event) error {
		revisionsRecorded.Inc()
		return nil
	})
}
