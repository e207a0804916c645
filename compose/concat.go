package compose

import (
	"context"
	"fmt"

	"panelcomp/block"
	"panelcomp/panel"
)

// ConcatOption configures a Concatenator.
type ConcatOption func(*Concatenator)

// WithColumnName names the single output variable. Default "0".
func WithColumnName(name string) ConcatOption {
	return func(c *Concatenator) { c.column = name }
}

// Concatenator reshapes a multivariate nested frame into a univariate one:
// each instance's variables are laid end to end along time, in column
// order, under a fresh 0..len-1 time index.
type Concatenator struct {
	column   string
	isFitted bool
}

func NewConcatenator(opts ...ConcatOption) *Concatenator {
	c := &Concatenator{column: "0"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fit has nothing to learn.
func (c *Concatenator) Fit(_ context.Context, x *panel.Frame, _ []float64) error {
	if x == nil {
		return ErrNilInput
	}
	c.isFitted = true
	return nil
}

func (c *Concatenator) Transform(_ context.Context, x *panel.Frame) (block.Block, error) {
	if !c.isFitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNilInput
	}

	cols := x.Columns()
	out := make([]panel.Series, x.NRows())
	for i := range out {
		var vals []float64
		for _, col := range cols {
			if !col.IsNested() {
				return nil, fmt.Errorf("compose: concatenate %q: %w", col.Name, panel.ErrNotNested)
			}
			vals = append(vals, col.Series[i].Values...)
		}
		if vals == nil {
			vals = []float64{}
		}
		out[i] = panel.NewSeries(vals)
	}

	f, err := panel.NewFrame(x.Index(), panel.NestedColumn(c.column, out))
	if err != nil {
		return nil, err
	}
	return block.NewTable(f), nil
}

// FitTransform fits on x and transforms it.
func (c *Concatenator) FitTransform(ctx context.Context, x *panel.Frame, y []float64) (block.Block, error) {
	return FitTransform(ctx, c, x, y)
}

func (c *Concatenator) Clone() Transformer {
	return &Concatenator{column: c.column}
}
