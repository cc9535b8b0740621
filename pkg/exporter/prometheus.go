package exporter

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtx-hosting/playercount/pkg/series"
)

type PrometheusExporter struct {
	registry       *prometheus.Registry
	currentPlayers prometheus.Gauge
	peakPlayers    prometheus.Gauge
	lastReport     prometheus.Gauge
	ingests        *prometheus.CounterVec
}

func NewPrometheusExporter() *PrometheusExporter {
	currentPlayers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "playercount_current_players",
		Help: "Player count from the most recent report",
	})

	peakPlayers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "playercount_peak_players",
		Help: "Highest player count in the last 24 hours, as of the last read",
	})

	lastReport := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "playercount_last_report_timestamp_seconds",
		Help: "Unix time of the most recent accepted report",
	})

	ingests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playercount_ingest_total",
			Help: "Player count reports by outcome",
		},
		[]string{"result"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(currentPlayers, peakPlayers, lastReport, ingests)

	return &PrometheusExporter{
		registry:       registry,
		currentPlayers: currentPlayers,
		peakPlayers:    peakPlayers,
		lastReport:     lastReport,
		ingests:        ingests,
	}
}

func (p *PrometheusExporter) ObserveIngest(result string) {
	p.ingests.WithLabelValues(result).Inc()
}

func (p *PrometheusExporter) ObserveSnapshot(snap series.Snapshot) {
	p.currentPlayers.Set(float64(snap.PlayerCount))
	p.lastReport.Set(float64(snap.Timestamp))
}

func (p *PrometheusExporter) ObservePeak(peak int) {
	p.peakPlayers.Set(float64(peak))
}

func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusExporter) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
