// Package metrics exposes Prometheus collectors for planning runs.
//
// A Collector is fed through graph hooks (stage runs and durations), a tool
// observer for the dispatcher, and ObserveRun for run outcomes. Metrics:
//
//   - tripgraph_stage_runs_total{stage,outcome}
//   - tripgraph_stage_duration_seconds{stage}
//   - tripgraph_tool_calls_total{tool,outcome}
//   - tripgraph_tool_duration_seconds{tool}
//   - tripgraph_runs_total{outcome}
//   - tripgraph_review_revisions
//   - tripgraph_tool_passes
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/flow"
	"github.com/hupe1980/tripgraph/graph"
)

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeInvalid   = "invalid"
	OutcomeCancelled = "cancelled"
	OutcomeMalformed = "malformed"
)

// Collector holds the planning metrics.
type Collector struct {
	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	ToolCalls     *prometheus.CounterVec
	ToolDuration  *prometheus.HistogramVec
	Runs          *prometheus.CounterVec
	Revisions     prometheus.Histogram
	ToolPasses    prometheus.Histogram
}

// NewCollector creates the collectors and registers them on reg. Use a
// dedicated prometheus.NewRegistry() per Collector; registering twice on the
// same registry panics.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		StageRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgraph_stage_runs_total",
			Help: "Total number of stage executions",
		}, []string{"stage", "outcome"}),

		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tripgraph_stage_duration_seconds",
			Help:    "Duration of stage executions in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),

		ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgraph_tool_calls_total",
			Help: "Total number of tool invocations",
		}, []string{"tool", "outcome"}),

		ToolDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tripgraph_tool_duration_seconds",
			Help:    "Duration of tool invocations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),

		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tripgraph_runs_total",
			Help: "Total number of planning runs by outcome",
		}, []string{"outcome"}),

		Revisions: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripgraph_review_revisions",
			Help:    "Revisions requested by review per completed run",
			Buckets: []float64{0, 1, 2},
		}),

		ToolPasses: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripgraph_tool_passes",
			Help:    "Tool batches dispatched per completed run",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		}),
	}
}

// GraphHooks returns hooks recording stage runs and durations.
func (c *Collector) GraphHooks() graph.Hooks {
	return graph.Hooks{
		OnStageEnd: func(_ context.Context, stage, _ string, dur time.Duration, err error) {
			c.StageRuns.WithLabelValues(stage, outcome(err)).Inc()
			c.StageDuration.WithLabelValues(stage).Observe(dur.Seconds())
		},
	}
}

// ToolObserver returns a dispatcher observer recording tool calls.
func (c *Collector) ToolObserver() flow.CallObserver {
	return func(name string, dur time.Duration, err error) {
		c.ToolCalls.WithLabelValues(name, outcome(err)).Inc()
		c.ToolDuration.WithLabelValues(name).Observe(dur.Seconds())
	}
}

// ObserveRun records the outcome of a finished run. s may be nil.
func (c *Collector) ObserveRun(s *core.State, err error) {
	switch {
	case err == nil && s != nil && !s.IsValid:
		c.Runs.WithLabelValues(OutcomeInvalid).Inc()
		return
	case err != nil:
		c.Runs.WithLabelValues(outcome(err)).Inc()
		return
	}

	c.Runs.WithLabelValues(OutcomeOK).Inc()
	if s != nil {
		c.Revisions.Observe(float64(s.IterationCounter))
		c.ToolPasses.Observe(float64(s.ToolPasses))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case errors.Is(err, core.ErrMalformedOutput):
		return OutcomeMalformed
	default:
		return OutcomeError
	}
}
