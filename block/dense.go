package block

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dense is a row-major dense block. Unlike mat.Dense it may have zero rows
// or zero columns, which is what a fully dropped composition returns.
type Dense struct {
	r, c int
	m    *mat.Dense // nil when r == 0 or c == 0
}

// NewDense builds an r×c block over data (row-major, copied). Nil data
// yields zeros.
func NewDense(r, c int, data []float64) (*Dense, error) {
	if r < 0 || c < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%d", ErrShape, r, c)
	}
	if data != nil && len(data) != r*c {
		return nil, fmt.Errorf("%w: %d values for %dx%d", ErrShape, len(data), r, c)
	}
	d := &Dense{r: r, c: c}
	if r > 0 && c > 0 {
		if data != nil {
			data = append([]float64(nil), data...)
		}
		d.m = mat.NewDense(r, c, data)
	}
	return d, nil
}

// DenseOf copies a gonum matrix into a block.
func DenseOf(m mat.Matrix) *Dense {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return &Dense{r: r, c: c}
	}
	return &Dense{r: r, c: c, m: mat.DenseCopyOf(m)}
}

func (d *Dense) Rows() int                      { return d.r }
func (d *Dense) Cols() int                      { return d.c }
func (d *Dense) NNZ() int                       { return d.r * d.c }
func (d *Dense) Ndim() int                      { return 2 }
func (d *Dense) Representation() Representation { return RepDense }

// At returns the value at (i, j).
func (d *Dense) At(i, j int) float64 { return d.m.At(i, j) }

// Matrix exposes the backing gonum matrix; nil for empty shapes.
func (d *Dense) Matrix() *mat.Dense { return d.m }

// Row returns a copy of row i.
func (d *Dense) Row(i int) []float64 {
	if d.m == nil {
		return []float64{}
	}
	return mat.Row(nil, i, d.m)
}

// CountNonZero counts cells that are not exactly zero.
func (d *Dense) CountNonZero() int {
	if d.m == nil {
		return 0
	}
	n := 0
	for i := 0; i < d.r; i++ {
		for _, v := range d.m.RawRowView(i) {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// HStackDense concatenates blocks column-wise. All blocks must share a row
// count.
func HStackDense(blocks []*Dense) (*Dense, error) {
	if len(blocks) == 0 {
		return &Dense{}, nil
	}
	r, c := blocks[0].r, 0
	for k, b := range blocks {
		if b.r != r {
			return nil, fmt.Errorf("%w: block %d has %d rows, want %d", ErrShape, k, b.r, r)
		}
		c += b.c
	}
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for _, b := range blocks {
			if b.m != nil {
				data = append(data, b.m.RawRowView(i)...)
			}
		}
	}
	return NewDense(r, c, data)
}

func (d *Dense) scaled(w float64) *mat.Dense {
	var m mat.Dense
	m.Scale(w, d.m)
	return &m
}
