package compose

import (
	"context"
	"fmt"

	"panelcomp/block"
	"panelcomp/panel"
)

// Transformer is a panel-level transformation: the unit of work a
// ColumnTransformer routes columns to. Clone returns an unfitted copy with
// the same configuration and no shared mutable state.
type Transformer interface {
	Fit(ctx context.Context, x *panel.Frame, y []float64) error
	Transform(ctx context.Context, x *panel.Frame) (block.Block, error)
	Clone() Transformer
}

// FitTransform fits t on x and transforms x.
func FitTransform(ctx context.Context, t Transformer, x *panel.Frame, y []float64) (block.Block, error) {
	if err := t.Fit(ctx, x, y); err != nil {
		return nil, err
	}
	return t.Transform(ctx, x)
}

type actionKind int

const (
	actionInvalid actionKind = iota
	actionApply
	actionDrop
	actionPassthrough
)

// Action says what happens to the columns a spec selects. It is one of
// Apply(t), Drop or Passthrough; the zero value is invalid.
type Action struct {
	kind actionKind
	t    Transformer
}

var (
	// Drop discards the selected columns.
	Drop = Action{kind: actionDrop}
	// Passthrough forwards the selected columns unchanged.
	Passthrough = Action{kind: actionPassthrough}
)

// Apply routes the selected columns through t.
func Apply(t Transformer) Action { return Action{kind: actionApply, t: t} }

// Transformer returns the wrapped transformer and whether the action is
// Apply.
func (a Action) Transformer() (Transformer, bool) { return a.t, a.kind == actionApply }

func (a Action) IsDrop() bool        { return a.kind == actionDrop }
func (a Action) IsPassthrough() bool { return a.kind == actionPassthrough }

func (a Action) String() string {
	switch a.kind {
	case actionApply:
		return fmt.Sprintf("apply(%T)", a.t)
	case actionDrop:
		return "drop"
	case actionPassthrough:
		return "passthrough"
	default:
		return "invalid"
	}
}

func (a Action) validate() error {
	switch a.kind {
	case actionDrop, actionPassthrough:
		return nil
	case actionApply:
		if a.t == nil {
			return fmt.Errorf("%w: apply(nil)", ErrInvalidAction)
		}
		return nil
	default:
		return ErrInvalidAction
	}
}

// Spec names an action and the columns it applies to.
type Spec struct {
	Name    string
	Action  Action
	Columns Selector
}

// RemainderName is the implicit spec that receives unclaimed columns.
const RemainderName = "remainder"

func validateSpecs(specs []Spec) error {
	seen := make(map[string]struct{}, len(specs))
	for i, s := range specs {
		if s.Name == "" || s.Name == RemainderName {
			return fmt.Errorf("%w: spec %d named %q", ErrInvalidName, i, s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, s.Name)
		}
		seen[s.Name] = struct{}{}
		if err := s.Action.validate(); err != nil {
			return fmt.Errorf("spec %q: %w", s.Name, err)
		}
		if s.Columns == nil {
			return fmt.Errorf("spec %q: %w: nil", s.Name, ErrInvalidSelector)
		}
	}
	return nil
}
