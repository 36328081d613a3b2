// Package metrics exposes Prometheus instrumentation for workflow runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/promocoach/promocoach/workflow"
)

// StepMetrics records per-step execution counts and durations. Attach its
// Observe method to the executor as a lifecycle observer.
type StepMetrics struct {
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec

	mu      sync.Mutex
	started map[string]time.Time
}

// NewStepMetrics creates the collectors and registers them with reg.
func NewStepMetrics(namespace string, reg prometheus.Registerer) *StepMetrics {
	m := &StepMetrics{
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_steps_total",
				Help:      "Workflow step completions by outcome",
			},
			[]string{"step", "outcome"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workflow_step_duration_seconds",
				Help:      "Workflow step wall-clock duration",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"step"},
		),
		started: make(map[string]time.Time),
	}
	reg.MustRegister(m.stepsTotal, m.stepDuration)
	return m
}

// Observe consumes one lifecycle event. It matches a completion or error to
// the most recent start of the same step within the run.
func (m *StepMetrics) Observe(ev workflow.Event) {
	k := ev.RunID + "/" + string(ev.Step)
	switch ev.Kind {
	case workflow.EventStepStart:
		m.mu.Lock()
		m.started[k] = time.Now()
		m.mu.Unlock()
	case workflow.EventStepComplete:
		m.finish(k, string(ev.Step), "success")
	case workflow.EventStepError:
		m.finish(k, string(ev.Step), "error")
	}
}

func (m *StepMetrics) finish(key, step, outcome string) {
	m.mu.Lock()
	startedAt, ok := m.started[key]
	delete(m.started, key)
	m.mu.Unlock()

	m.stepsTotal.WithLabelValues(step, outcome).Inc()
	if ok {
		m.stepDuration.WithLabelValues(step).Observe(time.Since(startedAt).Seconds())
	}
}
