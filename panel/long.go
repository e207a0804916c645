package panel

import (
	"fmt"
	"sort"
)

// Long is the long view of a panel: one row per (instance, time) pair and
// one value per variable in each row.
type Long struct {
	Instances []string
	Times     []int64
	Columns   []string
	Values    [][]float64
}

// Len returns the number of (instance, time) rows.
func (l *Long) Len() int { return len(l.Instances) }

// ToLong converts a nested frame into its long view. Instances appear in
// row order, each with its time points in series order.
func (f *Frame) ToLong() (*Long, error) {
	l := &Long{Columns: f.Names()}
	for i, id := range f.index {
		n, err := f.InstanceLen(i)
		if err != nil {
			return nil, err
		}
		if len(f.columns) == 0 {
			continue
		}
		idx := f.columns[0].Series[i].Index
		for _, c := range f.columns[1:] {
			if !sameIndex(idx, c.Series[i].Index) {
				return nil, fmt.Errorf("%w: instance %q, column %q", ErrMisalignedIndex, id, c.Name)
			}
		}
		for t := 0; t < n; t++ {
			row := make([]float64, len(f.columns))
			for j, c := range f.columns {
				row[j] = c.Series[i].Values[t]
			}
			l.Instances = append(l.Instances, id)
			l.Times = append(l.Times, idx[t])
			l.Values = append(l.Values, row)
		}
	}
	return l, nil
}

// FromLong rebuilds the nested view. Instances keep their order of first
// appearance; rows of one instance are ordered by time label.
func FromLong(l *Long) (*Frame, error) {
	if len(l.Times) != len(l.Instances) || len(l.Values) != len(l.Instances) {
		return nil, fmt.Errorf("%w: long form has %d instances, %d times, %d rows",
			ErrShape, len(l.Instances), len(l.Times), len(l.Values))
	}

	var order []string
	rows := make(map[string][]int)
	for r, id := range l.Instances {
		if len(l.Values[r]) != len(l.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrShape, r, len(l.Values[r]), len(l.Columns))
		}
		if _, ok := rows[id]; !ok {
			order = append(order, id)
		}
		rows[id] = append(rows[id], r)
	}

	cols := make([]Column, len(l.Columns))
	for j, name := range l.Columns {
		cols[j] = NestedColumn(name, make([]Series, len(order)))
	}
	for i, id := range order {
		rs := rows[id]
		sort.SliceStable(rs, func(a, b int) bool { return l.Times[rs[a]] < l.Times[rs[b]] })
		idx := make([]int64, len(rs))
		for k, r := range rs {
			idx[k] = l.Times[r]
			if k > 0 && idx[k] == idx[k-1] {
				return nil, fmt.Errorf("%w: instance %q, time %d", ErrDuplicateTime, id, idx[k])
			}
		}
		for j := range cols {
			vals := make([]float64, len(rs))
			for k, r := range rs {
				vals[k] = l.Values[r][j]
			}
			cols[j].Series[i] = Series{Index: append([]int64(nil), idx...), Values: vals}
		}
	}
	return NewFrame(order, cols...)
}
