package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"panelcomp/compose"
	"panelcomp/internal/config"
	"panelcomp/internal/spec"
	"panelcomp/internal/transform"
	"panelcomp/sink"
	"panelcomp/sink/stdout"
	"panelcomp/source"
	_ "panelcomp/source/csv"
	"panelcomp/unit"
)

// Defaults fill composition settings the YAML leaves out.
type Defaults struct {
	Jobs            int
	SparseThreshold float64
}

type Option func(*compiler)

func WithDefaults(d Defaults) Option { return func(c *compiler) { c.defaults = d } }

func WithObserver(o compose.Observer) Option { return func(c *compiler) { c.obs = o } }

// WithOutput redirects the stdout sink, mostly for tests.
func WithOutput(w io.Writer) Option { return func(c *compiler) { c.out = w } }

type compiler struct {
	defaults Defaults
	obs      compose.Observer
	out      io.Writer
	runner   *Runner
	clients  map[string]transform.Client
}

// Compile turns a composition file into a ready Runner. Source and sinks come
// from their registries and every step becomes a compose transformer. Units
// with a remote address share one client per address.
func Compile(ctx context.Context, path string, opts ...Option) (*Runner, error) {
	c := &compiler{
		defaults: Defaults{Jobs: 1, SparseThreshold: compose.DefaultSparseThreshold},
		runner:   NewRunner(),
		clients:  map[string]transform.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.load(ctx, path); err != nil {
		_ = c.runner.Close()
		return nil, err
	}
	return c.runner, nil
}

func (c *compiler) load(ctx context.Context, path string) error {
	cfg, dataPath, err := config.LoadPipelineSpec(path)
	if err != nil {
		return err
	}

	src, err := source.NewAdapter(cfg.Source.Kind)
	if err != nil {
		return err
	}
	if err := src.Configure(source.Config{Path: dataPath}); err != nil {
		return err
	}
	c.runner.SetSource(src)

	steps := make([]compose.Step, 0, len(cfg.Steps))
	for _, s := range cfg.Steps {
		t, err := c.step(ctx, s)
		if err != nil {
			return fmt.Errorf("step %q: %w", s.Name, err)
		}
		steps = append(steps, compose.Step{Name: s.Name, Transformer: t})
	}
	p, err := compose.NewPipeline(steps...)
	if err != nil {
		return err
	}
	c.runner.SetPipeline(p)

	for _, name := range cfg.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			return err
		}

		switch name {
		case "stdout":
			err = sDrv.Configure(stdout.Config{
				PrintCounter: printCounter(cfg.SinkConfigs.Stdout),
				Out:          c.out,
			})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return err
		}
		c.runner.AddSink(sDrv)
	}
	return nil
}

func printCounter(raw any) bool {
	m, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	b, _ := m["print_counter"].(bool)
	return b
}

func (c *compiler) step(ctx context.Context, s spec.StepSpec) (compose.Transformer, error) {
	switch s.Type {
	case "concatenate":
		var opts []compose.ConcatOption
		if s.Column != "" {
			opts = append(opts, compose.WithColumnName(s.Column))
		}
		return compose.NewConcatenator(opts...), nil
	case "row":
		return c.row(ctx, s.Unit, s.Mode, s.Remote, s.Check, 0, c.jobs(s.Jobs))
	case "column":
		return c.column(ctx, s)
	default:
		return nil, fmt.Errorf("unsupported step type %q", s.Type)
	}
}

func (c *compiler) jobs(n *int) int {
	if n != nil {
		return *n
	}
	return c.defaults.Jobs
}

func (c *compiler) column(ctx context.Context, s spec.StepSpec) (compose.Transformer, error) {
	specs := make([]compose.Spec, 0, len(s.Transformers))
	for _, t := range s.Transformers {
		var action compose.Action
		switch t.Action {
		case "drop":
			action = compose.Drop
		case "passthrough":
			action = compose.Passthrough
		case "":
			rt, err := c.row(ctx, t.Unit, t.Mode, t.Remote, t.Check, t.TimeoutMS, 1)
			if err != nil {
				return nil, fmt.Errorf("transformer %q: %w", t.Name, err)
			}
			action = compose.Apply(rt)
		default:
			return nil, fmt.Errorf("transformer %q: %w %q", t.Name, compose.ErrInvalidAction, t.Action)
		}
		specs = append(specs, compose.Spec{Name: t.Name, Action: action, Columns: compose.ByName(t.Columns...)})
	}

	remainder, err := c.remainder(ctx, s.Remainder)
	if err != nil {
		return nil, err
	}
	threshold := c.defaults.SparseThreshold
	if s.SparseThreshold != nil {
		threshold = *s.SparseThreshold
	}
	opts := []compose.ColumnOption{
		compose.WithRemainder(remainder),
		compose.WithSparseThreshold(threshold),
		compose.WithJobs(c.jobs(s.Jobs)),
		compose.WithMetrics(c.obs),
	}
	if s.PreserveFrame != nil {
		opts = append(opts, compose.WithPreserveFrame(*s.PreserveFrame))
	}
	if len(s.Weights) > 0 {
		opts = append(opts, compose.WithWeights(s.Weights))
	}
	return compose.NewColumnTransformer(specs, opts...)
}

// remainder accepts "drop", "passthrough" or a registered unit name.
func (c *compiler) remainder(ctx context.Context, s string) (compose.Action, error) {
	switch s {
	case "", "drop":
		return compose.Drop, nil
	case "passthrough":
		return compose.Passthrough, nil
	}
	rt, err := c.row(ctx, s, "", "", nil, 0, 1)
	if err != nil {
		return compose.Action{}, fmt.Errorf("%w: %v", compose.ErrInvalidRemainder, err)
	}
	return compose.Apply(rt), nil
}

func (c *compiler) row(ctx context.Context, name, mode, remote string, check *bool, timeoutMS, jobs int) (*compose.RowTransformer, error) {
	u, err := c.unit(ctx, name, remote, time.Duration(timeoutMS)*time.Millisecond)
	if err != nil {
		return nil, err
	}
	opts := []compose.RowOption{compose.WithRowJobs(jobs), compose.WithRowMetrics(c.obs)}
	if check != nil {
		opts = append(opts, compose.WithCheck(*check))
	}
	if mode == "" {
		return compose.MakeRowTransformer(u, opts...)
	}
	kind, err := unit.ParseKind(mode)
	if err != nil {
		return nil, err
	}
	return compose.NewRowTransformer(u, kind, opts...)
}

func (c *compiler) unit(ctx context.Context, name, remote string, timeout time.Duration) (unit.Unit, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: no unit named", unit.ErrUnknownUnit)
	}
	if remote == "" {
		return unit.New(name)
	}
	cli, ok := c.clients[remote]
	if !ok {
		g, err := transform.NewGRPCClient(remote)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", remote, err)
		}
		cli = g
		c.clients[remote] = cli
		c.runner.AddClient(cli)
	}
	return transform.NewRemoteUnit(ctx, cli, name, timeout)
}
