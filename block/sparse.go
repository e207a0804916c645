package block

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Sparse is a compressed sparse row block. Like Dense it allows zero rows
// or zero columns.
type Sparse struct {
	r, c int
	m    *sparse.CSR // nil when r == 0 or c == 0
}

// NewCSR validates and wraps CSR arrays: row i stores its entries in
// indices[indptr[i]:indptr[i+1]] with matching data. Column indices must
// be strictly increasing within each row.
func NewCSR(r, c int, indptr, indices []int, data []float64) (*Sparse, error) {
	if r < 0 || c < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%d", ErrShape, r, c)
	}
	if len(indptr) != r+1 || indptr[0] != 0 {
		return nil, fmt.Errorf("%w: indptr has %d entries for %d rows", ErrShape, len(indptr), r)
	}
	if len(indices) != len(data) || indptr[r] != len(data) {
		return nil, fmt.Errorf("%w: %d indices, %d values, indptr ends at %d", ErrShape, len(indices), len(data), indptr[r])
	}
	for i := 0; i < r; i++ {
		if indptr[i+1] < indptr[i] {
			return nil, fmt.Errorf("%w: indptr decreases at row %d", ErrShape, i)
		}
		prev := -1
		for _, j := range indices[indptr[i]:indptr[i+1]] {
			if j <= prev || j >= c {
				return nil, fmt.Errorf("%w: column %d in row %d", ErrShape, j, i)
			}
			prev = j
		}
	}
	return newSparse(r, c, indptr, indices, data), nil
}

func newSparse(r, c int, indptr, indices []int, data []float64) *Sparse {
	s := &Sparse{r: r, c: c}
	if r > 0 && c > 0 {
		s.m = sparse.NewCSR(r, c,
			append([]int(nil), indptr...),
			append([]int(nil), indices...),
			append([]float64(nil), data...))
	}
	return s
}

// SparseFromDense keeps the non-zero cells of d.
func SparseFromDense(d *Dense) *Sparse {
	indptr := make([]int, 1, d.r+1)
	var indices []int
	var data []float64
	for i := 0; i < d.r; i++ {
		if d.m != nil {
			for j, v := range d.m.RawRowView(i) {
				if v != 0 {
					indices = append(indices, j)
					data = append(data, v)
				}
			}
		}
		indptr = append(indptr, len(data))
	}
	return newSparse(d.r, d.c, indptr, indices, data)
}

func (s *Sparse) Rows() int                      { return s.r }
func (s *Sparse) Cols() int                      { return s.c }
func (s *Sparse) Ndim() int                      { return 2 }
func (s *Sparse) Representation() Representation { return RepSparse }

func (s *Sparse) NNZ() int {
	if s.m == nil {
		return 0
	}
	return s.m.NNZ()
}

// At returns the value at (i, j); cells that are not stored read as zero.
func (s *Sparse) At(i, j int) float64 { return s.m.At(i, j) }

// Matrix exposes the backing CSR matrix; nil for empty shapes.
func (s *Sparse) Matrix() *sparse.CSR { return s.m }

// ToDense materialises every cell.
func (s *Sparse) ToDense() *Dense {
	if s.m == nil {
		return &Dense{r: s.r, c: s.c}
	}
	return &Dense{r: s.r, c: s.c, m: s.m.ToDense()}
}

func (s *Sparse) scaled(w float64) *Sparse {
	out := &Sparse{r: s.r, c: s.c}
	if s.m == nil {
		return out
	}
	coo := sparse.NewCOO(s.r, s.c, nil, nil, nil)
	s.m.DoNonZero(func(i, j int, v float64) { coo.Set(i, j, v*w) })
	out.m = coo.ToCSR()
	return out
}

// HStackSparse concatenates CSR blocks column-wise.
func HStackSparse(blocks []*Sparse) (*Sparse, error) {
	if len(blocks) == 0 {
		return &Sparse{}, nil
	}
	r, c, nnz := blocks[0].r, 0, 0
	for k, b := range blocks {
		if b.r != r {
			return nil, fmt.Errorf("%w: block %d has %d rows, want %d", ErrShape, k, b.r, r)
		}
		c += b.c
		nnz += b.NNZ()
	}
	out := &Sparse{r: r, c: c}
	if r == 0 || c == 0 {
		return out, nil
	}

	rows := make([]int, 0, nnz)
	cols := make([]int, 0, nnz)
	data := make([]float64, 0, nnz)
	offset := 0
	for _, b := range blocks {
		if b.m != nil {
			b.m.DoNonZero(func(i, j int, v float64) {
				rows = append(rows, i)
				cols = append(cols, j+offset)
				data = append(data, v)
			})
		}
		offset += b.c
	}
	out.m = sparse.NewCOO(r, c, rows, cols, data).ToCSR()
	return out, nil
}
