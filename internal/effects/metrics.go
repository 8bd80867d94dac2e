package effects

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "vpick"
	subsystem = "effects"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeInvalid = "invalid"

	reasonCached   = "cached"
	reasonInflight = "inflight"
)

type metrics struct {
	fetches  *prometheus.CounterVec
	dedup    *prometheus.CounterVec
	inflight *prometheus.GaugeVec
}

// newMetrics registers the orchestrator's collectors on reg. A nil reg
// yields working but unregistered collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fetches_total",
				Help:      "Total number of catalog fetches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		dedup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dedup_total",
				Help:      "Total number of load requests answered without a fetch",
			},
			[]string{"kind", "reason"},
		),
		inflight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inflight",
				Help:      "Current number of outstanding fetches",
			},
			[]string{"kind"},
		),
	}
}
