// Package block defines the output blocks produced by transformers and the
// rules used to stack them side by side.
//
// A block is a dense matrix, a CSR sparse matrix or a table (a panel.Frame).
// One-dimensional results exist as Column (a named table column, accepted as
// a single-column table) and Vector (rejected by dispatchers).
package block

import (
	"errors"
	"fmt"

	"panelcomp/panel"
)

var (
	// ErrShape reports blocks whose dimensions do not line up.
	ErrShape = errors.New("block: shape mismatch")

	// ErrNotNumeric reports a nested table column that cannot become a number.
	ErrNotNumeric = errors.New("block: nested column cannot be densified")

	// ErrOneDimensional reports a bare vector where a 2-D block is required.
	ErrOneDimensional = errors.New("block: one-dimensional output")
)

// Representation is the closed set of block layouts. The order is the
// stacking precedence: Sparse wins over Table, which wins over Dense.
type Representation int

const (
	RepDense Representation = iota
	RepTable
	RepSparse
)

func (r Representation) String() string {
	switch r {
	case RepDense:
		return "dense"
	case RepTable:
		return "table"
	case RepSparse:
		return "sparse"
	default:
		return fmt.Sprintf("representation(%d)", int(r))
	}
}

// Block is one transformer's output.
type Block interface {
	Rows() int
	Cols() int
	// NNZ is the number of structurally stored entries: every cell for
	// dense and table blocks, the stored entries for sparse ones.
	NNZ() int
	Ndim() int
	Representation() Representation
}

// Table wraps a frame as a block.
type Table struct {
	frame *panel.Frame
}

// NewTable wraps f.
func NewTable(f *panel.Frame) *Table { return &Table{frame: f} }

func (t *Table) Frame() *panel.Frame            { return t.frame }
func (t *Table) Rows() int                      { return t.frame.NRows() }
func (t *Table) Cols() int                      { return t.frame.NCols() }
func (t *Table) NNZ() int                       { return t.Rows() * t.Cols() }
func (t *Table) Ndim() int                      { return 2 }
func (t *Table) Representation() Representation { return RepTable }

// Column is a one-dimensional named table column.
type Column struct {
	Index []string
	Col   panel.Column
}

func (c *Column) Rows() int                      { return c.Col.Len() }
func (c *Column) Cols() int                      { return 1 }
func (c *Column) NNZ() int                       { return c.Col.Len() }
func (c *Column) Ndim() int                      { return 1 }
func (c *Column) Representation() Representation { return RepTable }

// AsTable promotes the column to a single-column table. A nil Index falls
// back to the given row labels.
func (c *Column) AsTable(index []string) (*Table, error) {
	if c.Index != nil {
		index = c.Index
	}
	f, err := panel.NewFrame(index, c.Col)
	if err != nil {
		return nil, err
	}
	return NewTable(f), nil
}

// Vector is a bare one-dimensional result.
type Vector struct {
	Values []float64
}

func (v *Vector) Rows() int                      { return len(v.Values) }
func (v *Vector) Cols() int                      { return 1 }
func (v *Vector) NNZ() int                       { return len(v.Values) }
func (v *Vector) Ndim() int                      { return 1 }
func (v *Vector) Representation() Representation { return RepDense }

// Density is the fraction of structurally stored entries over all cells of
// blocks laid side by side. It only reads block metadata.
func Density(blocks []Block) float64 {
	var nnz, total int
	for _, b := range blocks {
		nnz += b.NNZ()
		total += b.Rows() * b.Cols()
	}
	if total == 0 {
		return 0
	}
	return float64(nnz) / float64(total)
}
