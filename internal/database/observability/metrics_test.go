package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector(prometheus.NewRegistry())

	mc.RecordClamp("user", "reputation.upvotesReceived")
	mc.RecordClamp("user", "reputation.upvotesReceived")
	mc.RecordVote("Post", "create")
	mc.RecordDrift("Comment", "upvoteCount")
	mc.RecordNotification("delivered")
	mc.ObserveTransaction(OutcomeCommitted, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(mc.FloorClamps.WithLabelValues("user", "reputation.upvotesReceived")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Votes.WithLabelValues("Post", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.ReconcileDrift.WithLabelValues("Comment", "upvoteCount")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Notifications.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.Transactions.WithLabelValues(OutcomeCommitted)))
}

func TestGetGlobalMetricsIsSingleton(t *testing.T) {
	assert.Same(t, GetGlobalMetrics(), GetGlobalMetrics())
}
