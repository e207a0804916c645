package panel

import "errors"

var (
	// ErrShape reports cells that do not line up with the frame's rows.
	ErrShape = errors.New("panel: shape mismatch")

	// ErrDuplicateInstance reports a repeated instance id.
	ErrDuplicateInstance = errors.New("panel: duplicate instance id")

	// ErrDuplicateColumn reports a repeated column name.
	ErrDuplicateColumn = errors.New("panel: duplicate column name")

	// ErrDuplicateTime reports a repeated time label within one series.
	ErrDuplicateTime = errors.New("panel: duplicate time label")

	// ErrColumnNotFound reports a lookup of a column the frame does not hold.
	ErrColumnNotFound = errors.New("panel: column not found")

	// ErrOutOfRange reports a row or column position outside the frame.
	ErrOutOfRange = errors.New("panel: index out of range")

	// ErrUnequalLength reports variables of one instance with different lengths.
	ErrUnequalLength = errors.New("panel: unequal series length within instance")

	// ErrMisalignedIndex reports variables of one instance with different time labels.
	ErrMisalignedIndex = errors.New("panel: misaligned time index within instance")

	// ErrNotNested reports a nested-only operation applied to a scalar column.
	ErrNotNested = errors.New("panel: column is not nested")

	// ErrEmptySeries reports an instance without any time points.
	ErrEmptySeries = errors.New("panel: empty series")
)
