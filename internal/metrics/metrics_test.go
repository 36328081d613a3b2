package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/promocoach/promocoach/workflow"
)

func TestStepMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStepMetrics("test", reg)

	m.Observe(workflow.Event{Kind: workflow.EventStepStart, Step: "gap_analysis", RunID: "r1"})
	m.Observe(workflow.Event{Kind: workflow.EventStepComplete, Step: "gap_analysis", RunID: "r1"})

	m.Observe(workflow.Event{Kind: workflow.EventStepStart, Step: "save_outputs", RunID: "r1"})
	m.Observe(workflow.Event{Kind: workflow.EventStepError, Step: "save_outputs", RunID: "r1"})

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.stepsTotal.WithLabelValues("gap_analysis", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.stepsTotal.WithLabelValues("save_outputs", "error")))
	assert.Empty(t, m.started, "start timestamps cleaned up after completion")
}

func TestStepMetricsIgnoresProgressEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStepMetrics("test", reg)

	m.Observe(workflow.Event{Kind: workflow.EventStepProgress, Step: "gap_analysis", RunID: "r1"})

	assert.Equal(t, float64(0),
		testutil.ToFloat64(m.stepsTotal.WithLabelValues("gap_analysis", "success")))
}
