// Command multipartserver is a reference implementation of the multipart
// library's domain stack: a gnet event loop accepts raw TCP connections,
// each carrying one multipart message with a boundary fixed at startup,
// and streams parts through multipart.HeaderParser/BodyParser and
// disposition.Parse as bytes arrive, without ever buffering a whole
// message in memory.
//
// This is a demonstration harness, not an HTTP server: wiring an actual
// Content-Type-negotiated boundary is left to whatever transport embeds
// this package, matching the library's own Non-goal of not shipping an
// HTTP client or server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/panjf2000/ants/v2"
	gnet "github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		addr        = flag.String("addr", "tcp://127.0.0.1:9000", "listen address")
		boundary    = flag.String("boundary", "streammime-boundary", "multipart boundary shared by every connection")
		maxPartBody = flag.Int64("max-part-body", 0, "maximum bytes per part body (0 = library default)")
		poolSize    = flag.Int("pool-size", defaultWorkerPoolSize, "ants worker pool size")
		logPath     = flag.String("log", defaultLogPath, "path to the rotated log file")
	)
	flag.Parse()

	cfg := defaultServerConfig()
	for _, opt := range []ServerOption{
		WithBoundary(*boundary),
		WithMaxPartBody(*maxPartBody),
		WithWorkerPoolSize(*poolSize),
		WithLogPath(*logPath),
	} {
		opt(&cfg)
	}

	if err := run(*addr, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr string, cfg serverConfig) error {
	logger := newLogger(cfg.logPath)
	defer func() { _ = logger.Sync() }()

	pool, err := ants.NewPool(cfg.workerPoolSize)
	if err != nil {
		return fmt.Errorf("build worker pool: %w", err)
	}
	defer pool.Release()

	handler := newMultipartHandler(cfg, logger, pool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var group errgroup.Group

	group.Go(func() error {
		defer cancel()
		return gnet.Run(handler, addr, cfg.opts...)
	})

	// A second long-running loop coordinated by the same errgroup, in the
	// style of synqronlabs/raven running its cache sweep alongside its
	// resolver loop: periodically logs worker pool occupancy so a deployed
	// server has some visibility into whether the pool is saturated.
	group.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				logger.Info("worker pool occupancy", zap.Int("running", pool.Running()), zap.Int("cap", pool.Cap()))
			}
		}
	})

	logger.Info("multipart server listening", zap.String("addr", addr), zap.String("boundary", cfg.boundary))

	return group.Wait()
}
