// Package metrics records workflow action outcomes and authorization decisions
// in a Prometheus registry owned by the caller.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "reviewflow"

// Recorder owns the reviewflow collectors. A nil *Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	// ActionOutcomes counts executions by action id and outcome tag.
	ActionOutcomes *prometheus.CounterVec
	// ActionDuration observes execution latency by action id.
	ActionDuration *prometheus.HistogramVec
	// ActionErrors counts executions that returned a store error.
	ActionErrors *prometheus.CounterVec
	// AuthzDecisions counts group-read decisions by decision and reason.
	AuthzDecisions *prometheus.CounterVec
	// ReviewerAssignments counts reviewer bindings by mode (person or group).
	ReviewerAssignments *prometheus.CounterVec
}

// New creates a Recorder registered on a fresh registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Recorder registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		ActionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_outcomes_total",
				Help:      "Total number of processing action executions by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		ActionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_duration_seconds",
				Help:      "Latency of processing action executions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		ActionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_errors_total",
				Help:      "Total number of processing action executions that failed with an error",
			},
			[]string{"action"},
		),
		AuthzDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authz_decisions_total",
				Help:      "Total number of group read authorization decisions by decision and reason",
			},
			[]string{"decision", "reason"},
		),
		ReviewerAssignments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviewer_assignments_total",
				Help:      "Total number of reviewer role bindings by mode",
			},
			[]string{"mode"},
		),
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveAction records one action execution.
func (r *Recorder) ObserveAction(actionID, outcome string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.ActionDuration.WithLabelValues(actionID).Observe(elapsed.Seconds())
	if err != nil {
		r.ActionErrors.WithLabelValues(actionID).Inc()
		return
	}
	r.ActionOutcomes.WithLabelValues(actionID, outcome).Inc()
}

// ObserveDecision records one authorization decision.
func (r *Recorder) ObserveDecision(allowed bool, reason string) {
	if r == nil {
		return
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	r.AuthzDecisions.WithLabelValues(decision, reason).Inc()
}

// ObserveAssignment records a reviewer role binding.
func (r *Recorder) ObserveAssignment(mode string) {
	if r == nil {
		return
	}
	r.ReviewerAssignments.WithLabelValues(mode).Inc()
}

// Sample is one counter or histogram series flattened for display.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers every non-empty series, sorted by name and labels. Histograms
// report their observation count.
func (r *Recorder) Snapshot() ([]Sample, error) {
	if r == nil {
		return nil, nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}
	var samples []Sample
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			value, ok := sampleValue(family.GetType(), metric)
			if !ok {
				continue
			}
			samples = append(samples, Sample{
				Name:   family.GetName(),
				Labels: formatLabels(metric.GetLabel()),
				Value:  value,
			})
		}
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

func sampleValue(kind dto.MetricType, metric *dto.Metric) (float64, bool) {
	switch kind {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue(), true
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount()), true
	default:
		return 0, false
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		parts = append(parts, pair.GetName()+"="+pair.GetValue())
	}
	return strings.Join(parts, ",")
}
