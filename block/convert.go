package block

import (
	"fmt"

	"panelcomp/panel"
)

// ToDense converts any 2-D block with numeric cells into a dense block.
func ToDense(b Block) (*Dense, error) {
	switch v := b.(type) {
	case *Dense:
		return v, nil
	case *Sparse:
		return v.ToDense(), nil
	case *Table:
		return tableToDense(v.frame)
	case *Column:
		t, err := v.AsTable(panel.DefaultNames(v.Rows()))
		if err != nil {
			return nil, err
		}
		return tableToDense(t.frame)
	default:
		return nil, fmt.Errorf("%w: cannot densify %T", ErrOneDimensional, b)
	}
}

func tableToDense(f *panel.Frame) (*Dense, error) {
	r, c := f.NRows(), f.NCols()
	data := make([]float64, r*c)
	for j, col := range f.Columns() {
		if col.IsNested() {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, col.Name)
		}
		for i, v := range col.Values {
			data[i*c+j] = v
		}
	}
	return NewDense(r, c, data)
}

// ToSparse converts any 2-D block with numeric cells into CSR.
func ToSparse(b Block) (*Sparse, error) {
	if s, ok := b.(*Sparse); ok {
		return s, nil
	}
	d, err := ToDense(b)
	if err != nil {
		return nil, err
	}
	return SparseFromDense(d), nil
}

// ToTable converts a block into a table. Matrix columns are named by
// ordinal and rows take the given labels.
func ToTable(b Block, index []string) (*Table, error) {
	switch v := b.(type) {
	case *Table:
		return v, nil
	case *Column:
		return v.AsTable(index)
	case *Sparse:
		return ToTable(v.ToDense(), index)
	case *Dense:
		if len(index) != v.r {
			return nil, fmt.Errorf("%w: %d row labels for %d rows", ErrShape, len(index), v.r)
		}
		names := panel.DefaultNames(v.c)
		cols := make([]panel.Column, v.c)
		for j := range cols {
			vals := make([]float64, v.r)
			for i := range vals {
				vals[i] = v.m.At(i, j)
			}
			cols[j] = panel.ScalarColumn(names[j], vals)
		}
		f, err := panel.NewFrame(index, cols...)
		if err != nil {
			return nil, err
		}
		return NewTable(f), nil
	default:
		return nil, fmt.Errorf("%w: cannot tabulate %T", ErrOneDimensional, b)
	}
}

// Scale returns a copy of b with every value multiplied by w.
func Scale(b Block, w float64) (Block, error) {
	switch v := b.(type) {
	case *Dense:
		out := &Dense{r: v.r, c: v.c}
		if v.m != nil {
			out.m = v.scaled(w)
		}
		return out, nil
	case *Sparse:
		return v.scaled(w), nil
	case *Table:
		cols := v.frame.Columns()
		for j, c := range cols {
			cols[j] = scaleColumn(c, w)
		}
		f, err := panel.NewFrame(v.frame.Index(), cols...)
		if err != nil {
			return nil, err
		}
		return NewTable(f), nil
	case *Column:
		return &Column{Index: v.Index, Col: scaleColumn(v.Col, w)}, nil
	default:
		return nil, fmt.Errorf("%w: cannot scale %T", ErrOneDimensional, b)
	}
}

func scaleColumn(c panel.Column, w float64) panel.Column {
	c = c.Clone()
	if c.IsNested() {
		for _, s := range c.Series {
			for t := range s.Values {
				s.Values[t] *= w
			}
		}
		return c
	}
	for i := range c.Values {
		c.Values[i] *= w
	}
	return c
}
