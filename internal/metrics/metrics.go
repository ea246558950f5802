// Package metrics exposes Prometheus instrumentation for the station watcher.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "dirble"
	subsystem = "watcher"

	shutdownTimeout = 5 * time.Second
)

// Recorder is the instrumentation surface the watcher reports to.
type Recorder interface {
	PollCompleted(d time.Duration, err error)
	StationsFetched(feedID string, n int)
	StationPublished(feedID string)
	PublishFailed(feedID string)
	FeedFailed(feedID string)
}

// Metrics holds the watcher collectors registered on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	polls           prometheus.Counter
	pollFailures    prometheus.Counter
	pollDuration    prometheus.Histogram
	feedFailures    *prometheus.CounterVec
	stationsFetched *prometheus.CounterVec
	stationsPublish *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
}

// New registers the watcher collectors on a fresh registry. Go runtime and
// process collectors are included so /metrics is useful on its own.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newWithRegistry(reg)
}

func newWithRegistry(reg *prometheus.Registry) *Metrics {
	auto := promauto.With(reg)
	return &Metrics{
		registry: reg,
		polls: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "polls_total",
			Help:      "Total number of poll passes over all feeds.",
		}),
		pollFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_failures_total",
			Help:      "Poll passes that finished with at least one feed error.",
		}),
		pollDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_duration_seconds",
			Help:      "Wall time of a poll pass.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		feedFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "feed_failures_total",
			Help:      "Feeds that could not be fetched, by feed id.",
		}, []string{"feed"}),
		stationsFetched: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stations_fetched_total",
			Help:      "Stations returned by the directory, by feed id.",
		}, []string{"feed"}),
		stationsPublish: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stations_published_total",
			Help:      "New stations delivered to at least one publisher, by feed id.",
		}, []string{"feed"}),
		publishFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "publish_failures_total",
			Help:      "Station events no publisher accepted, by feed id.",
		}, []string{"feed"}),
	}
}

func (m *Metrics) PollCompleted(d time.Duration, err error) {
	m.polls.Inc()
	m.pollDuration.Observe(d.Seconds())
	if err != nil {
		m.pollFailures.Inc()
	}
}

func (m *Metrics) StationsFetched(feedID string, n int) {
	m.stationsFetched.WithLabelValues(feedID).Add(float64(n))
}

func (m *Metrics) StationPublished(feedID string) {
	m.stationsPublish.WithLabelValues(feedID).Inc()
}

func (m *Metrics) PublishFailed(feedID string) {
	m.publishFailures.WithLabelValues(feedID).Inc()
}

func (m *Metrics) FeedFailed(feedID string) {
	m.feedFailures.WithLabelValues(feedID).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	}
}

// Nop discards all observations.
type Nop struct{}

func (Nop) PollCompleted(time.Duration, error) {}
func (Nop) StationsFetched(string, int)        {}
func (Nop) StationPublished(string)            {}
func (Nop) PublishFailed(string)               {}
func (Nop) FeedFailed(string)                  {}

var (
	_ Recorder = (*Metrics)(nil)
	_ Recorder = Nop{}
)
