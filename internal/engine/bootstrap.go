package engine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"panelcomp/internal/pipeline"
	"panelcomp/internal/telemetry"
	"panelcomp/internal/transport"
)

// Config wires the long-running engine. Zero ports disable the listener.
type Config struct {
	GRPCPort    int
	MetricsPort int
	PipelineYml string // optional, run once at start

	Jobs            int
	SparseThreshold float64
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := telemetry.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	// 2. pipeline runner
	var runner *pipeline.Runner
	if cfg.PipelineYml != "" {
		runner, err = pipeline.Compile(ctx, cfg.PipelineYml,
			pipeline.WithObserver(metrics),
			pipeline.WithDefaults(pipeline.Defaults{Jobs: cfg.Jobs, SparseThreshold: cfg.SparseThreshold}),
		)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	// 3. transport server
	var srv *transport.Server
	if cfg.GRPCPort > 0 {
		srv, err = transport.StartServer(cfg.GRPCPort)
		if err != nil {
			if runner != nil {
				_ = runner.Close()
			}
			return nil, fmt.Errorf("transport: %w", err)
		}
	}

	var httpSrv *http.Server
	if cfg.MetricsPort > 0 {
		httpSrv = telemetry.Expose(cfg.MetricsPort, reg)
	}

	return &Engine{
		transport: srv,
		runner:    runner,
		metrics:   httpSrv,
		registry:  reg,
	}, nil
}
