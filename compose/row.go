package compose

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"panelcomp/block"
	"panelcomp/internal/logging"
	"panelcomp/panel"
	"panelcomp/unit"
)

// RowOption configures a RowTransformer.
type RowOption func(*RowTransformer)

// WithCheck toggles the construction-time check that the unit's kind
// matches the transformer's. Default true.
func WithCheck(b bool) RowOption {
	return func(r *RowTransformer) { r.check = b }
}

// WithRowJobs bounds how many instances are processed at once.
func WithRowJobs(n int) RowOption {
	return func(r *RowTransformer) { r.jobs = normalizeJobs(n) }
}

// WithRowMetrics reports broadcast instance counts to o.
func WithRowMetrics(o Observer) RowOption {
	return func(r *RowTransformer) {
		if o != nil {
			r.obs = o
		}
	}
}

// RowTransformer broadcasts a single-instance unit over every instance of
// a nested frame. Each instance gets its own clone of the template, fitted
// and applied on that instance alone.
type RowTransformer struct {
	template unit.Unit
	kind     unit.Kind
	check    bool
	jobs     int
	opts     []RowOption
	obs      Observer
	log      *slog.Logger

	isFitted bool
}

// NewRowTransformer wraps u for the given kind. With checking on, a unit
// of another kind is rejected with ErrKindMismatch.
func NewRowTransformer(u unit.Unit, kind unit.Kind, opts ...RowOption) (*RowTransformer, error) {
	if u == nil {
		return nil, ErrNilUnit
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("compose: %w: %v", unit.ErrUnknownKind, kind)
	}
	r := &RowTransformer{
		template: u,
		kind:     kind,
		check:    true,
		jobs:     1,
		opts:     append([]RowOption(nil), opts...),
		obs:      nopObserver{},
		log:      logging.For("row_transformer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.check && u.Kind() != kind {
		return nil, fmt.Errorf("%w: %T is %v, want %v", ErrKindMismatch, u, u.Kind(), kind)
	}
	return r, nil
}

func NewSeriesToSeriesRowTransformer(u unit.Unit, opts ...RowOption) (*RowTransformer, error) {
	return NewRowTransformer(u, unit.SeriesToSeries, opts...)
}

func NewSeriesToPrimitivesRowTransformer(u unit.Unit, opts ...RowOption) (*RowTransformer, error) {
	return NewRowTransformer(u, unit.SeriesToPrimitives, opts...)
}

// MakeRowTransformer picks the variant from the unit's declared kind.
func MakeRowTransformer(u unit.Unit, opts ...RowOption) (*RowTransformer, error) {
	if u == nil {
		return nil, ErrNilUnit
	}
	return NewRowTransformer(u, u.Kind(), opts...)
}

// Kind reports the variant in use.
func (r *RowTransformer) Kind() unit.Kind { return r.kind }

// Fit only marks the transformer fitted: every instance is fitted on its
// own clone at transform time.
func (r *RowTransformer) Fit(_ context.Context, x *panel.Frame, _ []float64) error {
	if x == nil {
		return ErrNilInput
	}
	r.isFitted = true
	return nil
}

// Transform clones the template once per instance, fits and applies each
// clone on its instance, and reassembles the results in instance order.
func (r *RowTransformer) Transform(ctx context.Context, x *panel.Frame) (block.Block, error) {
	if !r.isFitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNilInput
	}

	n := x.NRows()
	arena := make([]unit.Unit, n)
	results := make([]*mat.Dense, n)
	err := fanOut(ctx, r.jobs, n, func(_ context.Context, i int) error {
		xi, err := x.Instance(i)
		if err != nil {
			return fmt.Errorf("compose: instance %q: %w", x.ID(i), err)
		}
		arena[i] = r.template.Clone()
		out, err := unit.FitTransform(arena[i], xi)
		if err != nil {
			return fmt.Errorf("compose: instance %q: %w", x.ID(i), err)
		}
		results[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.obs.ObserveInstances(r.kind.String(), n)
	r.log.Debug("broadcast", "kind", r.kind, "instances", n, "jobs", r.jobs)
	if r.kind == unit.SeriesToPrimitives {
		return primitivesTable(x, results)
	}
	return seriesTable(x, results)
}

// primitivesTable stacks the 1×k results into a scalar table with a fresh
// "0".."n-1" row index.
func primitivesTable(x *panel.Frame, results []*mat.Dense) (block.Block, error) {
	k := 0
	for i, m := range results {
		rows, cols := m.Dims()
		if rows != 1 {
			return nil, fmt.Errorf("%w: instance %q produced %d rows, want 1", ErrShape, x.ID(i), rows)
		}
		if i == 0 {
			k = cols
		} else if cols != k {
			return nil, fmt.Errorf("%w: instance %q produced %d values, want %d", ErrShape, x.ID(i), cols, k)
		}
	}

	names := panel.DefaultNames(k)
	cols := make([]panel.Column, k)
	for j := range cols {
		vals := make([]float64, len(results))
		for i, m := range results {
			vals[i] = m.At(0, j)
		}
		cols[j] = panel.ScalarColumn(names[j], vals)
	}
	f, err := panel.NewFrame(panel.DefaultNames(len(results)), cols...)
	if err != nil {
		return nil, err
	}
	return block.NewTable(f), nil
}

// seriesTable turns each time×variable result back into nested cells.
// Instance ids are kept. Variable names are kept when the variable count
// is unchanged. An instance keeps its time labels when its length is
// unchanged and gets 0..m-1 otherwise.
func seriesTable(x *panel.Frame, results []*mat.Dense) (block.Block, error) {
	k := x.NCols()
	if len(results) > 0 {
		_, k = results[0].Dims()
	}
	for i, m := range results {
		if _, c := m.Dims(); c != k {
			return nil, fmt.Errorf("%w: instance %q produced %d variables, want %d", ErrShape, x.ID(i), c, k)
		}
	}
	names := x.Names()
	if k != len(names) {
		names = panel.DefaultNames(k)
	}

	series := make([][]panel.Series, k)
	for j := range series {
		series[j] = make([]panel.Series, len(results))
	}
	for i, m := range results {
		rows, _ := m.Dims()
		in, err := x.TimeIndex(i)
		if err != nil {
			return nil, err
		}
		idx := panel.DefaultIndex(rows)
		if len(in) == rows {
			idx = in
		}
		for j := 0; j < k; j++ {
			series[j][i] = panel.Series{
				Index:  append([]int64(nil), idx...),
				Values: mat.Col(nil, j, m),
			}
		}
	}

	cols := make([]panel.Column, k)
	for j := range cols {
		cols[j] = panel.NestedColumn(names[j], series[j])
	}
	f, err := panel.NewFrame(x.Index(), cols...)
	if err != nil {
		return nil, err
	}
	return block.NewTable(f), nil
}

// FitTransform fits on x and transforms it.
func (r *RowTransformer) FitTransform(ctx context.Context, x *panel.Frame, y []float64) (block.Block, error) {
	return FitTransform(ctx, r, x, y)
}

// Clone returns an unfitted transformer over the same template.
func (r *RowTransformer) Clone() Transformer {
	out, err := NewRowTransformer(r.template, r.kind, r.opts...)
	if err != nil {
		// options were accepted when r was built
		panic(err)
	}
	out.obs, out.log = r.obs, r.log
	return out
}
