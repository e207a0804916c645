package panel

import "fmt"

// FromArrays builds a nested frame from data laid out as
// [instance][variable][time]. Nil ids or names fall back to DefaultNames.
func FromArrays(ids, names []string, data [][][]float64) (*Frame, error) {
	if ids == nil {
		ids = DefaultNames(len(data))
	}
	if len(ids) != len(data) {
		return nil, fmt.Errorf("%w: %d ids for %d instances", ErrShape, len(ids), len(data))
	}
	nvars := len(names)
	if names == nil && len(data) > 0 {
		nvars = len(data[0])
		names = DefaultNames(nvars)
	}
	cols := make([]Column, nvars)
	for j := range cols {
		cols[j] = NestedColumn(names[j], make([]Series, len(data)))
	}
	for i, inst := range data {
		if len(inst) != nvars {
			return nil, fmt.Errorf("%w: instance %q has %d variables, want %d", ErrShape, ids[i], len(inst), nvars)
		}
		for j, vals := range inst {
			cols[j].Series[i] = NewSeries(append([]float64(nil), vals...))
		}
	}
	return NewFrame(append([]string(nil), ids...), cols...)
}

// FromTable builds a flat table from rows of scalar values.
func FromTable(ids, names []string, rows [][]float64) (*Frame, error) {
	if ids == nil {
		ids = DefaultNames(len(rows))
	}
	if len(ids) != len(rows) {
		return nil, fmt.Errorf("%w: %d ids for %d rows", ErrShape, len(ids), len(rows))
	}
	if names == nil && len(rows) > 0 {
		names = DefaultNames(len(rows[0]))
	}
	cols := make([]Column, len(names))
	for j := range cols {
		cols[j] = ScalarColumn(names[j], make([]float64, len(rows)))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %q has %d values, want %d", ErrShape, ids[i], len(row), len(names))
		}
		for j, v := range row {
			cols[j].Values[i] = v
		}
	}
	return NewFrame(append([]string(nil), ids...), cols...)
}
