package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig contains all configuration parameters for the key server's
// HTTP listeners.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the key API listens on.
	ListenAddr string

	// MetricsAddr is the address and port for the Prometheus listener.
	// If empty, the metrics server is not started.
	MetricsAddr string

	// EnablePprof mounts the pprof handlers under /debug when true.
	EnablePprof bool

	// Log is the structured logger for server operations.
	Log *slog.Logger

	// DrainDuration is how long the server keeps answering after it was
	// marked not ready, so load balancers notice before it goes away.
	DrainDuration time.Duration

	// GracefulShutdownDuration is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	GracefulShutdownDuration time.Duration

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the uploaded key.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	WriteTimeout time.Duration
}
