package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts sync runs and upserted rows. A nil *Metrics records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration prometheus.Histogram
	success  prometheus.Gauge
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sites_sync_runs_total",
				Help: "Total sync runs",
			},
			[]string{"result"},
		),

		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sites_sync_rows_total",
				Help: "Total worksheet rows processed",
			},
			[]string{"result"},
		),

		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sites_sync_duration_seconds",
				Help:    "Sync run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		success: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sites_sync_last_success_timestamp_seconds",
				Help: "Unix time of the last successful sync",
			},
		),
	}

	registry.MustRegister(m.runs, m.rows, m.duration, m.success)

	return &m
}

func (m *Metrics) observe(result Result, err error) {
	if m == nil {
		return
	}

	m.rows.WithLabelValues("synced").Add(float64(result.Synced))
	m.rows.WithLabelValues("failed").Add(float64(len(result.Failed)))
	m.rows.WithLabelValues("blank").Add(float64(result.Blank))
	m.duration.Observe(result.Finished.Sub(result.Started).Seconds())

	if err != nil {
		m.runs.WithLabelValues("error").Inc()
	} else {
		m.runs.WithLabelValues("ok").Inc()
		m.success.Set(float64(result.Finished.Unix()))
	}
}
