package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"panelcomp/internal/config"
	"panelcomp/internal/engine"
	"panelcomp/internal/logging"
	_ "panelcomp/sink/stdout"
	_ "panelcomp/source/csv"
	"panelcomp/unit"
)

const usage = `usage:
  panelcomp run   [-config runtime.yml] pipeline.yml
  panelcomp serve [-config runtime.yml] [-pipeline pipeline.yml]
  panelcomp units`

func main() {
	logging.InitFromEnv()
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = run(ctx, os.Args[2:])
	case "serve":
		err = serve(ctx, os.Args[2:])
	case "units":
		for _, n := range unit.Names() {
			fmt.Println(n)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logging.L().Error("panelcomp failed", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func loadRuntime(path string) (config.Runtime, error) {
	rt, err := config.LoadRuntime(path)
	if err != nil {
		return rt, fmt.Errorf("runtime config: %w", err)
	}
	logging.Configure(logging.Options{Level: rt.Log.Level, JSON: rt.Log.JSON})
	return rt, nil
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "runtime config YAML")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("run: want one pipeline file, got %d", fs.NArg())
	}

	rt, err := loadRuntime(*cfgPath)
	if err != nil {
		return err
	}
	e, err := engine.Bootstrap(ctx, engine.Config{
		PipelineYml:     fs.Arg(0),
		Jobs:            rt.Compose.Jobs,
		SparseThreshold: rt.Compose.SparseThreshold,
	})
	if err != nil {
		return err
	}
	return e.Run(ctx)
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "runtime config YAML")
	pipe := fs.String("pipeline", "", "composition to run before serving")
	_ = fs.Parse(args)

	rt, err := loadRuntime(*cfgPath)
	if err != nil {
		return err
	}
	e, err := engine.Bootstrap(ctx, engine.Config{
		GRPCPort:        rt.GRPC.Port,
		MetricsPort:     rt.Metrics.Port,
		PipelineYml:     *pipe,
		Jobs:            rt.Compose.Jobs,
		SparseThreshold: rt.Compose.SparseThreshold,
	})
	if err != nil {
		return err
	}
	return e.Run(ctx)
}
