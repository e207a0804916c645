package compose

import (
	"fmt"

	"panelcomp/panel"
)

// Selector resolves a column subset of a frame into positions.
type Selector interface {
	Resolve(f *panel.Frame) ([]int, error)
}

type byName []string

// ByName selects columns by name, in the given order.
func ByName(names ...string) Selector { return byName(names) }

func (s byName) Resolve(f *panel.Frame) ([]int, error) {
	cols := make([]int, len(s))
	for k, name := range s {
		j, ok := f.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		cols[k] = j
	}
	return cols, nil
}

type byIndex []int

// ByIndex selects columns by position. Negative positions count from the
// end, -1 being the last column.
func ByIndex(positions ...int) Selector { return byIndex(positions) }

func (s byIndex) Resolve(f *panel.Frame) ([]int, error) {
	n := f.NCols()
	cols := make([]int, len(s))
	for k, j := range s {
		if j < 0 {
			j += n
		}
		if j < 0 || j >= n {
			return nil, fmt.Errorf("%w: %d of %d", ErrColumnOutOfRange, s[k], n)
		}
		cols[k] = j
	}
	return cols, nil
}

type byRange struct{ start, stop int }

// ByRange selects the half-open position range [start, stop), clipped to
// the frame.
func ByRange(start, stop int) Selector { return byRange{start: start, stop: stop} }

func (s byRange) Resolve(f *panel.Frame) ([]int, error) {
	start, stop := max(s.start, 0), min(s.stop, f.NCols())
	var cols []int
	for j := start; j < stop; j++ {
		cols = append(cols, j)
	}
	return cols, nil
}

type byMask []bool

// ByMask selects the columns whose mask entry is true. The mask must cover
// every column.
func ByMask(mask ...bool) Selector { return byMask(mask) }

func (s byMask) Resolve(f *panel.Frame) ([]int, error) {
	if len(s) != f.NCols() {
		return nil, fmt.Errorf("%w: %d entries for %d columns", ErrMaskLength, len(s), f.NCols())
	}
	var cols []int
	for j, keep := range s {
		if keep {
			cols = append(cols, j)
		}
	}
	return cols, nil
}

type byFunc func(*panel.Frame) Selector

// ByFunc defers the choice of columns to fn, called with the input frame.
func ByFunc(fn func(*panel.Frame) Selector) Selector { return byFunc(fn) }

func (s byFunc) Resolve(f *panel.Frame) ([]int, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil func", ErrInvalidSelector)
	}
	inner := s(f)
	if inner == nil {
		return nil, fmt.Errorf("%w: func returned nil", ErrInvalidSelector)
	}
	return inner.Resolve(f)
}

type all struct{}

// All selects every column.
func All() Selector { return all{} }

func (all) Resolve(f *panel.Frame) ([]int, error) {
	cols := make([]int, f.NCols())
	for j := range cols {
		cols[j] = j
	}
	return cols, nil
}
