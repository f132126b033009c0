// Package metrics exposes Prometheus metrics for the holiday assistant.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "holidayvox"

var (
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of holiday API requests in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"country"},
	)

	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Total number of holiday API requests",
		},
		[]string{"country", "status"}, // status: success, error
	)

	utterancesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Total number of recognized utterances",
		},
		[]string{"kind"}, // kind: speech, empty
	)

	intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Total number of resolved command intents",
		},
		[]string{"intent"},
	)

	allMetrics = []prometheus.Collector{
		fetchDuration,
		fetchesTotal,
		utterancesTotal,
		intentsTotal,
	}
)

// RecordFetch records one holiday API request
func RecordFetch(country, status string, elapsed time.Duration) {
	fetchDuration.WithLabelValues(country).Observe(elapsed.Seconds())
	fetchesTotal.WithLabelValues(country, status).Inc()
}

// RecordUtterance records a recognized utterance
func RecordUtterance(text string) {
	kind := "speech"
	if text == "" {
		kind = "empty"
	}
	utterancesTotal.WithLabelValues(kind).Inc()
}

// RecordIntent records a resolved intent by name
func RecordIntent(intent string) {
	intentsTotal.WithLabelValues(intent).Inc()
}

// Exporter serves the metrics over HTTP
type Exporter struct {
	addr     string
	registry *prometheus.Registry
	logger   *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewExporter creates an exporter with the assistant and Go runtime metrics registered
func NewExporter(addr string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	for _, c := range allMetrics {
		reg.MustRegister(c)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Exporter{addr: addr, registry: reg, logger: logger}
}

// Registry returns the underlying registry
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Handler returns the /metrics handler
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Start serves /metrics in the background until ctx is done
func (e *Exporter) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())

	e.mu.Lock()
	e.server = &http.Server{
		Addr:              e.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := e.server
	e.mu.Unlock()

	go func() {
		e.logger.Info("metrics listening", "addr", e.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server failed", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()
}

// Shutdown stops the HTTP listener
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.server == nil {
		return nil
	}
	err := e.server.Shutdown(ctx)
	e.server = nil
	return err
}
