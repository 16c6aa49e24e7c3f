// Package metrics exposes Prometheus metrics for the key server on a
// dedicated registry and HTTP listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ruteri/ssh-key-server/common"
	"github.com/ruteri/ssh-key-server/interfaces"
)

// Results recorded in the result label of KeyOperations.
const (
	ResultOK             = "ok"
	ResultInvalidInput   = "invalid_input"
	ResultNotFound       = "not_found"
	ResultConflict       = "conflict"
	ResultStorageFailure = "storage_failure"
	ResultError          = "error"
)

var (
	// KeyOperations counts key store operations by operation and result.
	KeyOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "key_operations_total",
		Help:      "Key store operations by operation and result.",
	}, []string{"operation", "result"})

	// SnapshotRebuildDuration observes full rescans of the key tree.
	SnapshotRebuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: common.PackageName,
		Name:      "snapshot_rebuild_seconds",
		Help:      "Time spent rescanning the key tree.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	// SnapshotKeys is the number of keys in the installed snapshot.
	SnapshotKeys = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: common.PackageName,
		Name:      "snapshot_keys",
		Help:      "Number of keys in the currently installed snapshot.",
	})
)

// ResultLabel maps an error returned by a KeyStore onto a result label.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, interfaces.ErrInvalidInput):
		return ResultInvalidInput
	case errors.Is(err, interfaces.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, interfaces.ErrConflict):
		return ResultConflict
	case errors.Is(err, interfaces.ErrStorageFailure):
		return ResultStorageFailure
	default:
		return ResultError
	}
}

// RecordKeyOperation increments KeyOperations for op with the result of err.
func RecordKeyOperation(op string, err error) {
	KeyOperations.WithLabelValues(op, ResultLabel(err)).Inc()
}

// ObserveRebuild records a completed snapshot rebuild.
func ObserveRebuild(started time.Time, keys int) {
	SnapshotRebuildDuration.Observe(time.Since(started).Seconds())
	SnapshotKeys.Set(float64(keys))
}

// MetricsServer serves the registry at /metrics.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server
}

// New creates a metrics server listening on addr. The namespace selects the
// process collector namespace.
func New(namespace, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		KeyOperations,
		SnapshotRebuildDuration,
		SnapshotKeys,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &MetricsServer{
		registry: registry,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler returns the /metrics handler, mainly for tests.
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
