package panel

import (
	"fmt"
	"strconv"
)

// Series is one variable of one instance: values keyed by time labels.
type Series struct {
	Index  []int64
	Values []float64
}

// NewSeries wraps values with the default 0..n-1 time index.
func NewSeries(values []float64) Series {
	return Series{Index: DefaultIndex(len(values)), Values: values}
}

// Len returns the number of time points.
func (s Series) Len() int { return len(s.Values) }

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{
		Index:  append([]int64(nil), s.Index...),
		Values: append([]float64(nil), s.Values...),
	}
}

func (s Series) validate() error {
	if len(s.Index) != len(s.Values) {
		return fmt.Errorf("%w: series index has %d labels for %d values", ErrShape, len(s.Index), len(s.Values))
	}
	seen := make(map[int64]struct{}, len(s.Index))
	for _, t := range s.Index {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateTime, t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

func sameIndex(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DefaultIndex returns the contiguous time labels 0..n-1.
func DefaultIndex(n int) []int64 {
	idx := make([]int64, n)
	for i := range idx {
		idx[i] = int64(i)
	}
	return idx
}

// DefaultNames returns the labels "0".."n-1", used for unnamed rows and columns.
func DefaultNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// Column is one named variable of a frame. Exactly one of Series (nested)
// or Values (scalar) carries the cells, one per row.
type Column struct {
	Name   string
	Series []Series
	Values []float64
}

// NestedColumn builds a column holding one series per row.
func NestedColumn(name string, series []Series) Column {
	if series == nil {
		series = []Series{}
	}
	return Column{Name: name, Series: series}
}

// ScalarColumn builds a column holding one value per row.
func ScalarColumn(name string, values []float64) Column {
	if values == nil {
		values = []float64{}
	}
	return Column{Name: name, Values: values}
}

// IsNested reports whether cells are series.
func (c Column) IsNested() bool { return c.Series != nil }

// Len returns the number of cells.
func (c Column) Len() int {
	if c.IsNested() {
		return len(c.Series)
	}
	return len(c.Values)
}

// Clone returns a deep copy.
func (c Column) Clone() Column {
	out := Column{Name: c.Name}
	if c.IsNested() {
		out.Series = make([]Series, len(c.Series))
		for i, s := range c.Series {
			out.Series[i] = s.Clone()
		}
		return out
	}
	out.Values = append([]float64{}, c.Values...)
	return out
}

// Renamed returns the column under a new name, sharing cells.
func (c Column) Renamed(name string) Column {
	c.Name = name
	return c
}

func (c Column) pick(rows []int) Column {
	out := Column{Name: c.Name}
	if c.IsNested() {
		out.Series = make([]Series, len(rows))
		for k, i := range rows {
			out.Series[k] = c.Series[i]
		}
		return out
	}
	out.Values = make([]float64, len(rows))
	for k, i := range rows {
		out.Values[k] = c.Values[i]
	}
	return out
}
