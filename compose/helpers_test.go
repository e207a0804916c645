package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"panelcomp/block"
	"panelcomp/panel"
)

// fakeTransformer returns whatever build makes of its input. Clones get
// their own fit state.
type fakeTransformer struct {
	build   func(x *panel.Frame) (block.Block, error)
	fitErr  error
	fitted  bool
	fitCols []string
	calls   int // Transform calls
}

func (f *fakeTransformer) Fit(_ context.Context, x *panel.Frame, _ []float64) error {
	if f.fitErr != nil {
		return f.fitErr
	}
	f.fitted = true
	f.fitCols = x.Names()
	return nil
}

func (f *fakeTransformer) Transform(_ context.Context, x *panel.Frame) (block.Block, error) {
	if !f.fitted {
		return nil, ErrNotFitted
	}
	f.calls++
	return f.build(x)
}

func (f *fakeTransformer) Clone() Transformer {
	return &fakeTransformer{build: f.build, fitErr: f.fitErr}
}

func identity() *fakeTransformer {
	return &fakeTransformer{build: func(x *panel.Frame) (block.Block, error) {
		return block.NewTable(x), nil
	}}
}

// doubler densifies its selection and doubles every value.
func doubler() *fakeTransformer {
	return &fakeTransformer{build: func(x *panel.Frame) (block.Block, error) {
		d, err := block.ToDense(block.NewTable(x))
		if err != nil {
			return nil, err
		}
		return block.Scale(d, 2)
	}}
}

func returning(b block.Block) *fakeTransformer {
	return &fakeTransformer{build: func(*panel.Frame) (block.Block, error) { return b, nil }}
}

func scalarFrame(t *testing.T) *panel.Frame {
	t.Helper()
	f, err := panel.FromTable(
		[]string{"r0", "r1", "r2", "r3"},
		[]string{"a", "b", "c"},
		[][]float64{
			{1, 10, 100},
			{2, 20, 200},
			{3, 30, 300},
			{4, 40, 400},
		},
	)
	require.NoError(t, err)
	return f
}

// nestedFrame has three instances of lengths 4, 3 and 5 over variables x
// and y, with y = 10*x.
func nestedFrame(t *testing.T) *panel.Frame {
	t.Helper()
	f, err := panel.FromArrays([]string{"i0", "i1", "i2"}, []string{"x", "y"}, [][][]float64{
		{{1, 2, 3, 4}, {10, 20, 30, 40}},
		{{5, 7, 9}, {50, 70, 90}},
		{{2, 4, 6, 8, 10}, {20, 40, 60, 80, 100}},
	})
	require.NoError(t, err)
	return f
}

func denseRows(t *testing.T, b block.Block) [][]float64 {
	t.Helper()
	d, err := block.ToDense(b)
	require.NoError(t, err)
	out := make([][]float64, d.Rows())
	for i := range out {
		out[i] = d.Row(i)
	}
	return out
}

func tableOf(t *testing.T, b block.Block) *panel.Frame {
	t.Helper()
	tbl, ok := b.(*block.Table)
	require.Truef(t, ok, "want *block.Table, got %T", b)
	return tbl.Frame()
}

// sparseBlock builds an r×c CSR block whose first nnz cells, row-major,
// are non-zero.
func sparseBlock(t *testing.T, r, c, nnz int) *block.Sparse {
	t.Helper()
	data := make([]float64, r*c)
	for k := 0; k < nnz; k++ {
		data[k] = float64(k + 1)
	}
	d, err := block.NewDense(r, c, data)
	require.NoError(t, err)
	s := block.SparseFromDense(d)
	require.Equal(t, nnz, s.NNZ())
	return s
}
