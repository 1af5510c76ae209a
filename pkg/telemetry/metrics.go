package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts lifecycle steps by outcome and records their duration.
type Metrics struct {
	Steps    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lifecycle_steps_total",
				Help: "Total number of lifecycle steps by outcome",
			},
			[]string{"step", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lifecycle_step_duration_seconds",
				Help:    "Lifecycle step duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"step"},
		),
	}
	if registerer != nil {
		for _, collector := range []prometheus.Collector{metrics.Steps, metrics.Duration} {
			if err := registerer.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return metrics, nil
}

func (metrics *Metrics) Trace(ctx context.Context, step string, subjects ...any) func(...any) {
	start := time.Now()
	return func(results ...any) {
		outcome := "ok"
		if firstError(results) != nil {
			outcome = "error"
		}
		metrics.Steps.WithLabelValues(step, outcome).Inc()
		metrics.Duration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	}
}
