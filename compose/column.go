package compose

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"panelcomp/block"
	"panelcomp/internal/logging"
	"panelcomp/panel"
)

// Observer receives dispatcher activity. *telemetry.Metrics implements it.
type Observer interface {
	ObserveFit(transformer string)
	ObserveTransform(transformer string, d time.Duration)
	ObserveBlock(representation string)
	ObserveInstances(kind string, n int)
}

type nopObserver struct{}

func (nopObserver) ObserveFit(string)                      {}
func (nopObserver) ObserveTransform(string, time.Duration) {}
func (nopObserver) ObserveBlock(string)                    {}
func (nopObserver) ObserveInstances(string, int)           {}

// DefaultSparseThreshold is the density below which a sparse stack stays
// sparse.
const DefaultSparseThreshold = 0.3

// ColumnOption configures a ColumnTransformer.
type ColumnOption func(*ColumnTransformer)

// WithRemainder sets the action for columns no spec selects. Default Drop.
func WithRemainder(a Action) ColumnOption {
	return func(c *ColumnTransformer) { c.remainder = a }
}

// WithSparseThreshold sets the density cut-off for sparse output, in [0, 1].
func WithSparseThreshold(f float64) ColumnOption {
	return func(c *ColumnTransformer) { c.threshold = f }
}

// WithPreserveFrame toggles table output when a transformer returns a table.
// Default true.
func WithPreserveFrame(b bool) ColumnOption {
	return func(c *ColumnTransformer) { c.preserve = b }
}

// WithJobs bounds how many specs are fitted or transformed at once.
func WithJobs(n int) ColumnOption {
	return func(c *ColumnTransformer) { c.jobs = normalizeJobs(n) }
}

// WithWeights multiplies each named spec's output by its weight.
func WithWeights(w map[string]float64) ColumnOption {
	return func(c *ColumnTransformer) {
		c.weights = make(map[string]float64, len(w))
		for k, v := range w {
			c.weights[k] = v
		}
	}
}

// WithMetrics reports fits, transforms and stacked blocks to o.
func WithMetrics(o Observer) ColumnOption {
	return func(c *ColumnTransformer) {
		if o != nil {
			c.obs = o
		}
	}
}

// FittedSpec is a spec as resolved at fit time: its action carries the
// fitted clone and its columns are the input names it claimed.
type FittedSpec struct {
	Name    string
	Action  Action
	Columns []string
}

// ColumnTransformer applies named transformers to column subsets of a frame
// and stacks their outputs side by side.
type ColumnTransformer struct {
	specs     []Spec
	remainder Action
	threshold float64
	preserve  bool
	jobs      int
	weights   map[string]float64
	opts      []ColumnOption
	obs       Observer
	log       *slog.Logger

	fitted   []FittedSpec
	disjoint bool
	rep      block.Representation
	hasRep   bool
	isFitted bool
}

// NewColumnTransformer validates specs and options. Spec templates are
// never fitted; Fit works on clones.
func NewColumnTransformer(specs []Spec, opts ...ColumnOption) (*ColumnTransformer, error) {
	if err := validateSpecs(specs); err != nil {
		return nil, err
	}
	c := &ColumnTransformer{
		specs:     append([]Spec(nil), specs...),
		remainder: Drop,
		threshold: DefaultSparseThreshold,
		preserve:  true,
		jobs:      1,
		opts:      append([]ColumnOption(nil), opts...),
		obs:       nopObserver{},
		log:       logging.For("column_transformer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.remainder.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRemainder, err)
	}
	if c.threshold < 0 || c.threshold > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, c.threshold)
	}
	for name := range c.weights {
		if name != RemainderName && !c.hasSpec(name) {
			return nil, fmt.Errorf("%w: weight for %q", ErrUnknownSpec, name)
		}
	}
	return c, nil
}

func (c *ColumnTransformer) hasSpec(name string) bool {
	for _, s := range c.specs {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Fit resolves every selector against x, clones each Apply template and
// fits the clone on its columns. Previous clones are discarded.
func (c *ColumnTransformer) Fit(ctx context.Context, x *panel.Frame, y []float64) error {
	if x == nil {
		return ErrNilInput
	}
	if y != nil && len(y) != x.NRows() {
		return fmt.Errorf("%w: %d targets for %d rows", ErrTargetLength, len(y), x.NRows())
	}
	c.fitted, c.isFitted, c.hasRep = nil, false, false

	fitted, disjoint, err := c.resolve(x)
	if err != nil {
		return err
	}
	err = fanOut(ctx, c.jobs, len(fitted), func(ctx context.Context, i int) error {
		s := fitted[i]
		t, ok := s.Action.Transformer()
		if !ok || len(s.Columns) == 0 {
			return nil
		}
		sub, err := x.SelectNames(s.Columns)
		if err != nil {
			return fmt.Errorf("compose: fit %q: %w", s.Name, err)
		}
		if err := t.Fit(ctx, sub, y); err != nil {
			return fmt.Errorf("compose: fit %q: %w", s.Name, err)
		}
		c.obs.ObserveFit(s.Name)
		return nil
	})
	if err != nil {
		return err
	}

	c.fitted, c.disjoint, c.isFitted = fitted, disjoint, true
	c.log.Debug("fitted", "specs", len(fitted), "columns", x.NCols(), "disjoint", disjoint)
	return nil
}

// resolve turns specs into fitted specs with cloned actions, appends the
// remainder, and reports whether no column is claimed twice.
func (c *ColumnTransformer) resolve(x *panel.Frame) ([]FittedSpec, bool, error) {
	names := x.Names()
	claims := make([]int, len(names))
	out := make([]FittedSpec, 0, len(c.specs)+1)

	for _, s := range c.specs {
		pos, err := s.Columns.Resolve(x)
		if err != nil {
			return nil, false, fmt.Errorf("compose: select %q: %w", s.Name, err)
		}
		cols := make([]string, len(pos))
		for k, j := range pos {
			cols[k] = names[j]
			claims[j]++
		}
		out = append(out, FittedSpec{Name: s.Name, Action: cloneAction(s.Action), Columns: cols})
	}

	disjoint := true
	var rest []string
	for j, n := range claims {
		switch {
		case n == 0:
			rest = append(rest, names[j])
		case n > 1:
			disjoint = false
		}
	}
	if len(rest) > 0 {
		out = append(out, FittedSpec{Name: RemainderName, Action: cloneAction(c.remainder), Columns: rest})
	}
	return out, disjoint, nil
}

func cloneAction(a Action) Action {
	if t, ok := a.Transformer(); ok {
		return Apply(t.Clone())
	}
	return a
}

// Transform runs every fitted spec on the columns it claimed at fit time
// and stacks the outputs in declaration order, remainder last.
func (c *ColumnTransformer) Transform(ctx context.Context, x *panel.Frame) (block.Block, error) {
	if !c.isFitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNilInput
	}

	var live []FittedSpec
	for _, s := range c.fitted {
		if !s.Action.IsDrop() && len(s.Columns) > 0 {
			live = append(live, s)
		}
	}

	index := x.Index()
	parts := make([]part, len(live))
	err := fanOut(ctx, c.jobs, len(live), func(ctx context.Context, k int) error {
		b, err := c.produce(ctx, live[k], x, index)
		if err != nil {
			return err
		}
		parts[k] = part{name: live[k].Name, b: b}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := stack(parts, stackOptions{
		index:     index,
		threshold: c.threshold,
		preserve:  c.preserve,
		disjoint:  c.disjoint,
	})
	if err != nil {
		return nil, err
	}
	c.rep, c.hasRep = out.Representation(), true
	c.obs.ObserveBlock(c.rep.String())
	c.log.Debug("stacked", "blocks", len(parts), "representation", c.rep, "rows", out.Rows(), "cols", out.Cols())
	return out, nil
}

func (c *ColumnTransformer) produce(ctx context.Context, s FittedSpec, x *panel.Frame, index []string) (block.Block, error) {
	sub, err := x.SelectNames(s.Columns)
	if err != nil {
		return nil, fmt.Errorf("compose: transform %q: %w", s.Name, err)
	}

	var b block.Block
	if t, ok := s.Action.Transformer(); ok {
		start := time.Now()
		b, err = t.Transform(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("compose: transform %q: %w", s.Name, err)
		}
		c.obs.ObserveTransform(s.Name, time.Since(start))
	} else {
		b = block.NewTable(sub)
	}

	b, err = checkBlock(s.Name, b, index)
	if err != nil {
		return nil, err
	}
	if w, ok := c.weights[s.Name]; ok {
		if b, err = block.Scale(b, w); err != nil {
			return nil, fmt.Errorf("compose: weight %q: %w", s.Name, err)
		}
	}
	return b, nil
}

// checkBlock accepts 2-D blocks with one row per input row. A Column is
// promoted to a one-column table.
func checkBlock(name string, b block.Block, index []string) (block.Block, error) {
	switch v := b.(type) {
	case nil:
		return nil, fmt.Errorf("%w: %q returned no output", ErrShape, name)
	case *block.Column:
		t, err := v.AsTable(index)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrShape, name, err)
		}
		b = t
	}
	if b.Ndim() != 2 {
		return nil, fmt.Errorf("%w: %q returned %T", ErrShape, name, b)
	}
	if b.Rows() != len(index) {
		return nil, fmt.Errorf("%w: %q returned %d rows for %d", ErrShape, name, b.Rows(), len(index))
	}
	return b, nil
}

// FitTransform fits on x and transforms it.
func (c *ColumnTransformer) FitTransform(ctx context.Context, x *panel.Frame, y []float64) (block.Block, error) {
	return FitTransform(ctx, c, x, y)
}

// Clone returns an unfitted transformer with the same specs and options.
func (c *ColumnTransformer) Clone() Transformer {
	out, err := NewColumnTransformer(c.specs, c.opts...)
	if err != nil {
		// specs and options were validated when c was built
		panic(err)
	}
	out.obs, out.log = c.obs, c.log
	return out
}

// Named returns the action of a spec: after Fit an Apply action carries the
// fitted clone, before Fit the template. Drop and Passthrough come back as
// themselves.
func (c *ColumnTransformer) Named(name string) (Action, error) {
	if c.isFitted {
		for _, s := range c.fitted {
			if s.Name == name {
				return s.Action, nil
			}
		}
	}
	for _, s := range c.specs {
		if s.Name == name {
			return s.Action, nil
		}
	}
	if name == RemainderName {
		return c.remainder, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownSpec, name)
}

// Fitted returns the specs resolved by the last Fit, remainder included.
func (c *ColumnTransformer) Fitted() []FittedSpec {
	out := make([]FittedSpec, len(c.fitted))
	for i, s := range c.fitted {
		s.Columns = append([]string(nil), s.Columns...)
		out[i] = s
	}
	return out
}

// OutputRepresentation reports the layout of the last Transform output.
func (c *ColumnTransformer) OutputRepresentation() (block.Representation, bool) {
	return c.rep, c.hasRep
}
