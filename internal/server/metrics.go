// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/mindmap-pdf/pkg/types"
)

type metrics struct {
	registry   *prometheus.Registry
	total      *prometheus.CounterVec
	strategies *prometheus.CounterVec
	duration   prometheus.Histogram
	inFlight   prometheus.Gauge
}

// newMetrics registers collectors on a private registry so several servers
// (or tests) can coexist in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindmap_conversions_total",
				Help: "Conversions handled, by status and error kind.",
			},
			[]string{"status", "error_kind"},
		),
		strategies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mindmap_pdf_strategy_total",
				Help: "Successful conversions by the strategy that produced the PDF.",
			},
			[]string{"strategy"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mindmap_conversion_duration_seconds",
				Help:    "Wall time of a conversion including every external tool.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mindmap_conversions_in_flight",
				Help: "Conversions currently running.",
			},
		),
	}
	m.registry.MustRegister(m.total, m.strategies, m.duration, m.inFlight)
	return m
}

func (m *metrics) observe(o *types.Outcome) {
	if o == nil {
		return
	}
	m.total.WithLabelValues(string(o.Status), o.ErrorKind).Inc()
	m.duration.Observe(o.Duration.Seconds())
	if o.Status == types.ConversionDone {
		m.strategies.WithLabelValues(o.Strategy).Inc()
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
