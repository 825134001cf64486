package main

import (
	"os"
	"syscall"
	"time"

	gnet "github.com/panjf2000/gnet/v2"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	defaultWorkerPoolSize  = 256
	defaultLogPath         = "multipartserver.log"
)

// serverConfig collects everything run needs, in the same
// functional-options shape buff.RunGNet configures a listener with.
type serverConfig struct {
	boundary        string
	maxPartBody     int64
	shutdownSignals []os.Signal
	shutdownTimeout time.Duration
	workerPoolSize  int
	logPath         string
	opts            []gnet.Option
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		maxPartBody:     0, // 0 means multipart.PrepareSettings' default
		shutdownSignals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: defaultShutdownTimeout,
		workerPoolSize:  defaultWorkerPoolSize,
		logPath:         defaultLogPath,
	}
}

// ServerOption configures the serverConfig passed to run.
type ServerOption func(*serverConfig)

// WithBoundary sets the multipart boundary every accepted connection is
// expected to use. A production listener would read this per-request from
// a Content-Type header; this example server is TCP-only (no HTTP framing,
// per the library's own Non-goals) so the boundary is fixed at startup.
func WithBoundary(boundary string) ServerOption {
	return func(cfg *serverConfig) {
		if boundary != "" {
			cfg.boundary = boundary
		}
	}
}

// WithMaxPartBody overrides the per-part body size limit forwarded to
// multipart.Settings.
func WithMaxPartBody(n int64) ServerOption {
	return func(cfg *serverConfig) {
		if n > 0 {
			cfg.maxPartBody = n
		}
	}
}

// WithShutdownSignals overrides the OS signals that trigger graceful
// shutdown.
func WithShutdownSignals(signals ...os.Signal) ServerOption {
	return func(cfg *serverConfig) {
		if len(signals) > 0 {
			cfg.shutdownSignals = signals
		}
	}
}

// WithShutdownTimeout overrides the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(cfg *serverConfig) {
		if d > 0 {
			cfg.shutdownTimeout = d
		}
	}
}

// WithWorkerPoolSize overrides the size of the ants pool that completed
// parts are dispatched to.
func WithWorkerPoolSize(n int) ServerOption {
	return func(cfg *serverConfig) {
		if n > 0 {
			cfg.workerPoolSize = n
		}
	}
}

// WithLogPath overrides the lumberjack-rotated log file path.
func WithLogPath(path string) ServerOption {
	return func(cfg *serverConfig) {
		if path != "" {
			cfg.logPath = path
		}
	}
}

// WithGNetOption forwards a gnet.Option to the underlying event engine.
func WithGNetOption(opt gnet.Option) ServerOption {
	return func(cfg *serverConfig) {
		cfg.opts = append(cfg.opts, opt)
	}
}
