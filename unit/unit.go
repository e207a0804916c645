// Package unit defines the single-instance transformation contract that
// row-wise dispatchers broadcast over a panel, plus a registry of named
// unit factories and a few built-in units.
//
// A unit sees one instance at a time as a time×variable matrix: one row
// per time point, one column per variable.
package unit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted   = errors.New("unit: not fitted")
	ErrUnknownUnit = errors.New("unit: unknown unit")
	ErrUnknownKind = errors.New("unit: unknown kind")
	ErrShape       = errors.New("unit: shape mismatch")
)

// Kind tags what a unit produces from one instance.
type Kind int

const (
	// SeriesToSeries maps an instance onto another sequence, possibly of a
	// different length.
	SeriesToSeries Kind = iota + 1
	// SeriesToPrimitives collapses an instance into one fixed-size row.
	SeriesToPrimitives
)

func (k Kind) String() string {
	switch k {
	case SeriesToSeries:
		return "series-to-series"
	case SeriesToPrimitives:
		return "series-to-primitives"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k == SeriesToSeries || k == SeriesToPrimitives }

// ParseKind accepts the String form and the short aliases "series" and
// "primitives".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "series-to-series", "series":
		return SeriesToSeries, nil
	case "series-to-primitives", "primitives":
		return SeriesToPrimitives, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Unit is a clonable single-instance transformation. Clones must not share
// mutable state with their origin.
type Unit interface {
	Kind() Kind
	Fit(x *mat.Dense) error
	Transform(x *mat.Dense) (*mat.Dense, error)
	Clone() Unit
}

// FitTransform fits u on x and transforms x.
func FitTransform(u Unit, x *mat.Dense) (*mat.Dense, error) {
	if err := u.Fit(x); err != nil {
		return nil, err
	}
	return u.Transform(x)
}
