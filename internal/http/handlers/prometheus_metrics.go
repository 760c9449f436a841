package handlers

import (
	"bytes"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"

	"influencerroi/internal/analytics"
	"influencerroi/internal/dataset"
)

// Metrics holds the dashboard's prometheus collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	viewBuilds    *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	datasetRows   *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		viewBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "influencerroi",
				Name:      "view_builds_total",
				Help:      "Total number of dashboard views computed.",
			},
			[]string{"view"},
		),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "influencerroi",
				Name:      "view_build_duration_seconds",
				Help:      "Histogram of filter and aggregate durations in seconds.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"view"},
		),
		datasetRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "influencerroi",
				Name:      "dataset_rows",
				Help:      "Rows loaded and dropped per dataset at startup.",
			},
			[]string{"dataset", "state"},
		),
	}
	m.registry.MustRegister(
		m.viewBuilds,
		m.buildDuration,
		m.datasetRows,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveBuild counts one build of view and records its duration.
func (m *Metrics) ObserveBuild(view string, start time.Time) {
	m.viewBuilds.WithLabelValues(view).Inc()
	m.buildDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// RecordLoad publishes the join report as gauges.
func (m *Metrics) RecordLoad(r analytics.JoinReport) {
	set := func(name string, loaded, dropped int) {
		m.datasetRows.WithLabelValues(name, "loaded").Set(float64(loaded))
		m.datasetRows.WithLabelValues(name, "dropped").Set(float64(dropped))
	}
	set(dataset.Influencers, r.LoadedInfluencers, 0)
	set(dataset.Posts, r.LoadedPosts, r.DroppedPosts)
	set(dataset.Tracking, r.LoadedTracking, r.DroppedTracking)
	set(dataset.Payouts, r.LoadedPayouts, r.DroppedPayouts)
	m.datasetRows.WithLabelValues(dataset.Tracking, "unresolved_source").Set(float64(r.UnresolvedSources))
	m.datasetRows.WithLabelValues(dataset.Payouts, "duplicate").Set(float64(r.DuplicatePayouts))
}

// PrometheusHandler serves the registry in text format. With ?view=name,
// families carrying a view label keep only that view's series.
func PrometheusHandler(m *Metrics) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		view := string(ctx.QueryArgs().Peek("view"))

		metricFamilies, err := m.registry.Gather()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to gather metrics")
			return
		}

		filtered := metricFamilies
		if view != "" {
			filtered = filterByLabel(metricFamilies, "view", view)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

// filterByLabel keeps families without the label untouched and drops the
// series of labelled families whose value differs.
func filterByLabel(families []*dto.MetricFamily, name, value string) []*dto.MetricFamily {
	filtered := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		if !hasLabel(mf, name) {
			filtered = append(filtered, mf)
			continue
		}

		var kept []*dto.Metric
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == name && l.GetValue() == value {
					kept = append(kept, m)
					break
				}
			}
		}
		if len(kept) == 0 {
			continue
		}

		filtered = append(filtered, &dto.MetricFamily{
			Name:   mf.Name,
			Help:   mf.Help,
			Type:   mf.Type,
			Metric: kept,
		})
	}
	return filtered
}

func hasLabel(mf *dto.MetricFamily, name string) bool {
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == name {
				return true
			}
		}
	}
	return false
}
