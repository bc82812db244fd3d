// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records fetch runs and debug probes as Prometheus
// metrics. Batch runs write them to a node-exporter textfile; the debug
// server exposes them on /metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a registry and the metrics registered on it. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	TermsTotal       *prometheus.CounterVec
	ArticlesFetched  prometheus.Counter
	ArticlesAdded    prometheus.Counter
	StoreArticles    prometheus.Gauge
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	ProbesTotal      *prometheus.CounterVec
}

// New returns a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		TermsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubmed_harvest_terms_total",
				Help: "Query terms processed, by outcome",
			},
			[]string{"status"},
		),
		ArticlesFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_harvest_articles_fetched_total",
			Help: "Article records returned by detail fetches",
		}),
		ArticlesAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "pubmed_harvest_articles_added_total",
			Help: "Article records newly added to the store",
		}),
		StoreArticles: f.NewGauge(prometheus.GaugeOpts{
			Name: "pubmed_harvest_store_articles",
			Help: "Rows in the article store after the last run",
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name: "pubmed_harvest_run_duration_seconds",
			Help: "Wall time of the last fetch run",
		}),
		LastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "pubmed_harvest_last_run_timestamp_seconds",
			Help: "Unix time the last fetch run finished",
		}),
		ProbesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubmed_harvest_probes_total",
				Help: "Debug probes executed, by kind and status",
			},
			[]string{"kind", "status"},
		),
	}
}

// ObserveTerm counts one processed term.
func (r *Recorder) ObserveTerm(status string, fetched, added int) {
	if r == nil {
		return
	}
	r.TermsTotal.WithLabelValues(status).Inc()
	r.ArticlesFetched.Add(float64(fetched))
	r.ArticlesAdded.Add(float64(added))
}

// SetStoreSize records the number of stored rows.
func (r *Recorder) SetStoreSize(n int) {
	if r == nil {
		return
	}
	r.StoreArticles.Set(float64(n))
}

// FinishRun records the duration of a run that started at start.
func (r *Recorder) FinishRun(start time.Time) {
	if r == nil {
		return
	}
	r.RunDuration.Set(time.Since(start).Seconds())
	r.LastRunTimestamp.SetToCurrentTime()
}

// ObserveProbe counts one debug probe.
func (r *Recorder) ObserveProbe(kind, status string) {
	if r == nil {
		return
	}
	r.ProbesTotal.WithLabelValues(kind, status).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry to path for the node-exporter
// textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
