package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"panelcomp/internal/logging"
	"panelcomp/internal/pipeline"
	"panelcomp/internal/transport"
)

type Engine struct {
	transport *transport.Server
	runner    *pipeline.Runner
	metrics   *http.Server
	registry  *prometheus.Registry
}

// Gatherer exposes the engine's metric registry.
func (e *Engine) Gatherer() prometheus.Gatherer { return e.registry }

// Run executes the configured pipeline once, then serves remote units until
// ctx is cancelled. Without a gRPC port it returns after the pipeline.
func (e *Engine) Run(ctx context.Context) error {
	log := logging.For("engine")

	defer e.shutdown()

	if e.runner != nil {
		if _, err := e.runner.Run(ctx); err != nil {
			return err
		}
	}
	if e.transport == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		e.transport.Stop()
	}()

	log.Info("serving units", "addr", e.transport.Addr().String())
	return e.transport.Serve()
}

func (e *Engine) shutdown() {
	if e.runner != nil {
		_ = e.runner.Close()
	}
	if e.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.metrics.Shutdown(ctx)
	}
}
