package compose

import (
	"errors"

	"panelcomp/block"
	"panelcomp/panel"
)

// Configuration errors, reported at construction or at the start of Fit.
var (
	ErrDuplicateName    = errors.New("compose: duplicate transformer name")
	ErrInvalidName      = errors.New("compose: invalid transformer name")
	ErrInvalidAction    = errors.New("compose: invalid action")
	ErrInvalidRemainder = errors.New("compose: invalid remainder")
	ErrInvalidThreshold = errors.New("compose: sparse threshold outside [0, 1]")
	ErrInvalidSelector  = errors.New("compose: invalid column selector")
	ErrUnknownSpec      = errors.New("compose: unknown transformer name")
	ErrKindMismatch     = errors.New("compose: unit kind does not match row transformer")
	ErrNilUnit          = errors.New("compose: nil unit")
)

// Shape and input errors, reported while fitting or transforming.
var (
	ErrShape            = errors.New("compose: transformer output is not two-dimensional")
	ErrNotFitted        = errors.New("compose: transformer not fitted")
	ErrNilInput         = errors.New("compose: nil input frame")
	ErrTargetLength     = errors.New("compose: target length does not match rows")
	ErrColumnOutOfRange = errors.New("compose: column position out of range")
	ErrMaskLength       = errors.New("compose: mask length does not match columns")
	ErrNotTable         = errors.New("compose: step output is not a table")
)

// ErrColumnNotFound is the panel error for a missing named column.
var ErrColumnNotFound = panel.ErrColumnNotFound

var configErrors = []error{
	ErrDuplicateName, ErrInvalidName, ErrInvalidAction, ErrInvalidRemainder,
	ErrInvalidThreshold, ErrInvalidSelector, ErrUnknownSpec, ErrKindMismatch, ErrNilUnit,
}

// IsConfigError reports whether err stems from an invalid composition.
func IsConfigError(err error) bool {
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsShapeError reports whether err stems from an output or input that does
// not line up.
func IsShapeError(err error) bool {
	return errors.Is(err, ErrShape) ||
		errors.Is(err, ErrNotTable) ||
		errors.Is(err, block.ErrShape) ||
		errors.Is(err, block.ErrNotNumeric) ||
		errors.Is(err, block.ErrOneDimensional) ||
		errors.Is(err, panel.ErrShape) ||
		errors.Is(err, panel.ErrUnequalLength)
}
