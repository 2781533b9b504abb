package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// respond pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	RepliesProduced  prometheus.Counter
	RespondErrors    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Command handling metrics.
	CommandsParsed *prometheus.CounterVec // labels: kind={forecast,summary,list,help}, outcome={resolved,needs_disambiguation,...}
	SessionsActive prometheus.Gauge

	// Reply sizing metrics, in the units billing cares about.
	SegmentsProduced   prometheus.Counter
	CharactersProduced prometheus.Counter
	RespondDuration    prometheus.Histogram

	// Upstream fetch metrics.
	CellFetchFailures  prometheus.Counter
	TerrainRequests    *prometheus.CounterVec // labels: outcome={success,error}
	TerrainCache       *prometheus.CounterVec // labels: result={hit,miss}
	TerrainAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the inbound topic.",
		}),
		RepliesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "replies_produced_total",
			Help:      "Total replies written to the outbound topic.",
		}),
		RespondErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "respond_errors_total",
			Help:      "Total inbound messages that could not produce a reply.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "forecast_sms",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		CommandsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "commands_parsed_total",
			Help:      "Parsed commands by kind and parse outcome.",
		}, []string{"kind", "outcome"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "forecast_sms",
			Name:      "disambiguation_sessions_active",
			Help:      "Open disambiguation sessions awaiting a follow-up.",
		}),
		SegmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "segments_produced_total",
			Help:      "Total SMS segments across all replies.",
		}),
		CharactersProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "characters_produced_total",
			Help:      "Total rendered characters across all replies.",
		}),
		RespondDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "forecast_sms",
			Name:      "respond_duration_seconds",
			Help:      "Duration of a complete parse-resolve-compile cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CellFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "cell_fetch_failures_total",
			Help:      "Grid-cell forecast fetches that failed.",
		}),
		TerrainRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "terrain_requests_total",
			Help:      "Terrain elevation API requests by outcome.",
		}, []string{"outcome"}),
		TerrainCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast_sms",
			Name:      "terrain_cache_total",
			Help:      "Terrain elevation cache lookups by result.",
		}, []string{"result"}),
		TerrainAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "forecast_sms",
			Name:      "terrain_api_duration_seconds",
			Help:      "Terrain elevation API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.RepliesProduced,
		m.RespondErrors,
		m.PipelineRunning,
		m.CommandsParsed,
		m.SessionsActive,
		m.SegmentsProduced,
		m.CharactersProduced,
		m.RespondDuration,
		m.CellFetchFailures,
		m.TerrainRequests,
		m.TerrainCache,
		m.TerrainAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "messages_consumed_total"}),
		RepliesProduced:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "replies_produced_total"}),
		RespondErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "respond_errors_total"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "forecast_sms", Name: "pipeline_running"}),
		CommandsParsed:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "commands_parsed_total"}, []string{"kind", "outcome"}),
		SessionsActive:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "forecast_sms", Name: "disambiguation_sessions_active"}),
		SegmentsProduced:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "segments_produced_total"}),
		CharactersProduced: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "characters_produced_total"}),
		RespondDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "forecast_sms", Name: "respond_duration_seconds"}),
		CellFetchFailures:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "cell_fetch_failures_total"}),
		TerrainRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "terrain_requests_total"}, []string{"outcome"}),
		TerrainCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "forecast_sms", Name: "terrain_cache_total"}, []string{"result"}),
		TerrainAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "forecast_sms", Name: "terrain_api_duration_seconds"}),
	}
}
