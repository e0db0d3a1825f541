package metrics

import (
	"testing"

	"shutterdesk/internal/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	// IncHTTP should not panic
	assert.NotPanics(t, func() {
		IncHTTP("/api/v1/projects", "200")
		ObserveDuration("/api/v1/projects", 0.05)
	})
}

func TestSubscribe(t *testing.T) {
	Register()
	bus := events.NewEventBus()
	Subscribe(bus)

	createdBefore := testutil.ToFloat64(projectsCreated)
	postedBefore := testutil.ToFloat64(paymentsPosted)
	volumeBefore := testutil.ToFloat64(paymentAmount)
	reversedBefore := testutil.ToFloat64(paymentsReversed)
	reversedVolumeBefore := testutil.ToFloat64(reversedAmount)
	revisionsBefore := testutil.ToFloat64(revisionsRecorded)

	require.NoError(t, bus.PublishJSON(events.EventProjectCreated, events.ProjectEventPayload{ProjectID: 1}))
	require.NoError(t, bus.PublishJSON(events.EventStatusChanged, events.ProjectEventPayload{ProjectID: 1, Status: "Confirmed"}))
	require.NoError(t, bus.PublishJSON(events.EventPaymentPosted, events.PaymentEventPayload{PaymentID: 1, Amount: 5000}))
	require.NoError(t, bus.PublishJSON(events.EventPaymentReversed, events.PaymentEventPayload{PaymentID: 1, Amount: 5000}))
	require.NoError(t, bus.PublishJSON(events.EventRevisionRecorded, events.RevisionEventPayload{ProjectID: 1}))

	assert.Equal(t, createdBefore+1, testutil.ToFloat64(projectsCreated))
	assert.Equal(t, postedBefore+1, testutil.ToFloat64(paymentsPosted))
	assert.Equal(t, volumeBefore+5000, testutil.ToFloat64(paymentAmount))
	assert.Equal(t, reversedBefore+1, testutil.ToFloat64(paymentsReversed))
	assert.Equal(t, reversedVolumeBefore+5000, testutil.ToFloat64(reversedAmount))
	assert.Equal(t, revisionsBefore+1, testutil.ToFloat64(revisionsRecorded))
	assert.Equal(t, float64(1), testutil.ToFloat64(statusChanges.WithLabelValues("Confirmed")))
}
