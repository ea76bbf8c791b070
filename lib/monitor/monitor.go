// Package monitor exports echosounder engine activity as prometheus
// metrics.
package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/gotmc/echosounder"
	"github.com/gotmc/echosounder/lib/logger"
)

// Metrics implements echosounder.Observer. Each Metrics owns its registry,
// so several engines may be monitored side by side.
type Metrics struct {
	registry *prometheus.Registry

	exchanges *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	detects   *prometheus.CounterVec
	attempts  prometheus.Histogram
	state     *prometheus.GaugeVec
}

var _ echosounder.Observer = (*Metrics)(nil)

// New creates the metrics of one instrument. The port is attached to every
// series as a constant label.
func New(port string) *Metrics {
	labels := prometheus.Labels{"port": port}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "echosounder_commands_total",
			Help:        "Commands sent to the echosounder by reply outcome.",
			ConstLabels: labels,
		}, []string{"keyword", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "echosounder_command_duration_seconds",
			Help:        "Time from writing a command to its terminal reply and prompt.",
			ConstLabels: labels,
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 4, 8},
		}, []string{"keyword"}),
		detects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "echosounder_detections_total",
			Help:        "Detection handshakes by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "echosounder_detection_attempts",
			Help:        "Attempts used per detection handshake.",
			ConstLabels: labels,
			Buckets:     prometheus.LinearBuckets(1, 1, 10),
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "echosounder_state",
			Help:        "1 for the current instrument state, 0 otherwise.",
			ConstLabels: labels,
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.exchanges,
		m.latency,
		m.detects,
		m.attempts,
		m.state,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.ObserveState(echosounder.Undetected)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveExchange(keyword string, r echosounder.Result, d time.Duration) {
	m.exchanges.WithLabelValues(keyword, r.String()).Inc()
	m.latency.WithLabelValues(keyword).Observe(d.Seconds())
}

func (m *Metrics) ObserveDetect(attempts int, ok bool) {
	outcome := "failed"
	if ok {
		outcome = "detected"
	}
	m.detects.WithLabelValues(outcome).Inc()
	m.attempts.Observe(float64(attempts))
}

func (m *Metrics) ObserveState(s echosounder.State) {
	for _, st := range []echosounder.State{echosounder.Undetected, echosounder.Idle, echosounder.Running} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(st.String()).Set(v)
	}
}

// Handler serves the metrics in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve serves /metrics and /health on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("metrics server started", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if lerr := <-errc; lerr != nil && !errors.Is(lerr, http.ErrServerClosed) {
		err = multierr.Append(err, lerr)
	}
	log.Info("metrics server stopped", "addr", addr)
	return err
}
