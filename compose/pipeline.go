package compose

import (
	"context"
	"fmt"

	"panelcomp/block"
	"panelcomp/panel"
)

// Step is one named stage of a Pipeline.
type Step struct {
	Name        string
	Transformer Transformer
}

// Pipeline chains transformers: each non-final step must return a table,
// which becomes the next step's input.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: empty pipeline", ErrInvalidName)
	}
	seen := make(map[string]struct{}, len(steps))
	for i, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: step %d", ErrInvalidName, i)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: step %q", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.Transformer == nil {
			return nil, fmt.Errorf("%w: step %q", ErrInvalidAction, s.Name)
		}
	}
	return &Pipeline{steps: append([]Step(nil), steps...)}, nil
}

// Steps returns the stages in order.
func (p *Pipeline) Steps() []Step { return append([]Step(nil), p.steps...) }

// Fit fit-transforms every step but the last and fits the last.
func (p *Pipeline) Fit(ctx context.Context, x *panel.Frame, y []float64) error {
	x, err := p.through(ctx, x, y, true)
	if err != nil {
		return err
	}
	last := p.steps[len(p.steps)-1]
	if err := last.Transformer.Fit(ctx, x, y); err != nil {
		return fmt.Errorf("compose: step %q: %w", last.Name, err)
	}
	return nil
}

func (p *Pipeline) Transform(ctx context.Context, x *panel.Frame) (block.Block, error) {
	x, err := p.through(ctx, x, nil, false)
	if err != nil {
		return nil, err
	}
	last := p.steps[len(p.steps)-1]
	out, err := last.Transformer.Transform(ctx, x)
	if err != nil {
		return nil, fmt.Errorf("compose: step %q: %w", last.Name, err)
	}
	return out, nil
}

// through runs every step but the last.
func (p *Pipeline) through(ctx context.Context, x *panel.Frame, y []float64, fit bool) (*panel.Frame, error) {
	for _, s := range p.steps[:len(p.steps)-1] {
		var (
			out block.Block
			err error
		)
		if fit {
			out, err = FitTransform(ctx, s.Transformer, x, y)
		} else {
			out, err = s.Transformer.Transform(ctx, x)
		}
		if err != nil {
			return nil, fmt.Errorf("compose: step %q: %w", s.Name, err)
		}
		t, ok := out.(*block.Table)
		if !ok {
			return nil, fmt.Errorf("%w: step %q returned %T", ErrNotTable, s.Name, out)
		}
		x = t.Frame()
	}
	return x, nil
}

// FitTransform fits on x and transforms it, running every step once.
func (p *Pipeline) FitTransform(ctx context.Context, x *panel.Frame, y []float64) (block.Block, error) {
	x, err := p.through(ctx, x, y, true)
	if err != nil {
		return nil, err
	}
	last := p.steps[len(p.steps)-1]
	out, err := FitTransform(ctx, last.Transformer, x, y)
	if err != nil {
		return nil, fmt.Errorf("compose: step %q: %w", last.Name, err)
	}
	return out, nil
}

// Clone clones every step.
func (p *Pipeline) Clone() Transformer {
	steps := make([]Step, len(p.steps))
	for i, s := range p.steps {
		steps[i] = Step{Name: s.Name, Transformer: s.Transformer.Clone()}
	}
	return &Pipeline{steps: steps}
}
