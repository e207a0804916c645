package panel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Frame is the nested view of a panel: rows are instances keyed by a unique
// id, columns are named variables.
type Frame struct {
	index   []string
	columns []Column
	pos     map[string]int
}

// NewFrame validates and assembles a frame. Every column must hold exactly
// one cell per instance id.
func NewFrame(index []string, columns ...Column) (*Frame, error) {
	if index == nil {
		index = []string{}
	}
	seen := make(map[string]struct{}, len(index))
	for _, id := range index {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateInstance, id)
		}
		seen[id] = struct{}{}
	}

	pos := make(map[string]int, len(columns))
	for j, c := range columns {
		if _, dup := pos[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		pos[c.Name] = j
		if c.Len() != len(index) {
			return nil, fmt.Errorf("%w: column %q has %d cells for %d instances", ErrShape, c.Name, c.Len(), len(index))
		}
		for i, s := range c.Series {
			if err := s.validate(); err != nil {
				return nil, fmt.Errorf("column %q, instance %q: %w", c.Name, index[i], err)
			}
		}
	}
	return &Frame{index: index, columns: columns, pos: pos}, nil
}

// NRows returns the number of instances.
func (f *Frame) NRows() int { return len(f.index) }

// NCols returns the number of variables.
func (f *Frame) NCols() int { return len(f.columns) }

// Index returns a copy of the instance ids in row order.
func (f *Frame) Index() []string { return append([]string(nil), f.index...) }

// ID returns the instance id of row i.
func (f *Frame) ID(i int) string { return f.index[i] }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for j, c := range f.columns {
		names[j] = c.Name
	}
	return names
}

// Column returns column j. Cells are shared with the frame.
func (f *Frame) Column(j int) Column { return f.columns[j] }

// Columns returns all columns. Cells are shared with the frame.
func (f *Frame) Columns() []Column { return append([]Column(nil), f.columns...) }

// Lookup returns the position of the named column.
func (f *Frame) Lookup(name string) (int, bool) {
	j, ok := f.pos[name]
	return j, ok
}

// IsNested reports whether every column holds series.
func (f *Frame) IsNested() bool {
	for _, c := range f.columns {
		if !c.IsNested() {
			return false
		}
	}
	return true
}

// Select returns the frame restricted to the given column positions, in
// the given order.
func (f *Frame) Select(cols []int) (*Frame, error) {
	out := make([]Column, len(cols))
	for k, j := range cols {
		if j < 0 || j >= len(f.columns) {
			return nil, fmt.Errorf("%w: column %d of %d", ErrOutOfRange, j, len(f.columns))
		}
		out[k] = f.columns[j]
	}
	return NewFrame(f.index, out...)
}

// SelectNames returns the frame restricted to the named columns.
func (f *Frame) SelectNames(names []string) (*Frame, error) {
	cols := make([]int, len(names))
	for k, name := range names {
		j, ok := f.pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		cols[k] = j
	}
	return f.Select(cols)
}

// SelectRows returns the frame restricted to the given row positions.
func (f *Frame) SelectRows(rows []int) (*Frame, error) {
	index := make([]string, len(rows))
	for k, i := range rows {
		if i < 0 || i >= len(f.index) {
			return nil, fmt.Errorf("%w: row %d of %d", ErrOutOfRange, i, len(f.index))
		}
		index[k] = f.index[i]
	}
	out := make([]Column, len(f.columns))
	for j, c := range f.columns {
		out[j] = c.pick(rows)
	}
	return NewFrame(index, out...)
}

// WithIndex returns the frame relabelled with new instance ids.
func (f *Frame) WithIndex(ids []string) (*Frame, error) {
	return NewFrame(append([]string(nil), ids...), f.columns...)
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	cols := make([]Column, len(f.columns))
	for j, c := range f.columns {
		cols[j] = c.Clone()
	}
	pos := make(map[string]int, len(f.pos))
	for k, v := range f.pos {
		pos[k] = v
	}
	return &Frame{index: f.Index(), columns: cols, pos: pos}
}

// InstanceLen returns the shared length of instance i's variables.
func (f *Frame) InstanceLen(i int) (int, error) {
	if i < 0 || i >= len(f.index) {
		return 0, fmt.Errorf("%w: row %d of %d", ErrOutOfRange, i, len(f.index))
	}
	n := -1
	for _, c := range f.columns {
		if !c.IsNested() {
			return 0, fmt.Errorf("%w: %q", ErrNotNested, c.Name)
		}
		l := c.Series[i].Len()
		if n >= 0 && l != n {
			return 0, fmt.Errorf("%w: instance %q", ErrUnequalLength, f.index[i])
		}
		n = l
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// TimeIndex returns the time labels of instance i, taken from its first
// variable.
func (f *Frame) TimeIndex(i int) ([]int64, error) {
	if _, err := f.InstanceLen(i); err != nil {
		return nil, err
	}
	if len(f.columns) == 0 {
		return []int64{}, nil
	}
	return append([]int64(nil), f.columns[0].Series[i].Index...), nil
}

// Instance returns instance i as a time×variable matrix: one row per time
// point, one column per variable.
func (f *Frame) Instance(i int) (*mat.Dense, error) {
	n, err := f.InstanceLen(i)
	if err != nil {
		return nil, err
	}
	if len(f.columns) == 0 {
		return nil, fmt.Errorf("%w: instance %q has no variables", ErrShape, f.index[i])
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: instance %q", ErrEmptySeries, f.index[i])
	}
	x := mat.NewDense(n, len(f.columns), nil)
	for j, c := range f.columns {
		x.SetCol(j, c.Series[i].Values)
	}
	return x, nil
}
