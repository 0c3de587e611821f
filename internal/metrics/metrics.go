// Package metrics defines the Prometheus metrics exported by bilimusic.
//
// Metrics are registered on the default registry through promauto. They are
// only exposed when a listen address is configured, see Serve.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolver metrics
var (
	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bilimusic_resolve_total",
			Help: "Total number of resolver calls by result (ok, invalid, error)",
		},
		[]string{"result"},
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bilimusic_resolve_duration_seconds",
			Help:    "Resolver HTTP round trip duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Playback metrics
var (
	IntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bilimusic_intents_total",
			Help: "Total number of intents handled by the playlist controller",
		},
		[]string{"intent"},
	)

	PlaybackRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bilimusic_playback_retries_total",
			Help: "Total number of retries scheduled after a media error",
		},
	)

	PersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bilimusic_persist_errors_total",
			Help: "Total number of failed playlist writes",
		},
	)
)

// Result labels for ResolveTotal.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Serve exposes /metrics on addr until ctx is canceled.
// An empty addr disables the listener and returns immediately.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
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
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
