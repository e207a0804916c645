package compose

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelcomp/block"
	"panelcomp/panel"
)

func tallFrame(t *testing.T, rows int) *panel.Frame {
	t.Helper()
	data := make([][]float64, rows)
	for i := range data {
		data[i] = []float64{float64(i)}
	}
	f, err := panel.FromTable(panel.DefaultNames(rows), []string{"v"}, data)
	require.NoError(t, err)
	return f
}

func TestNewColumnTransformer_Validation(t *testing.T) {
	ok := Spec{Name: "a", Action: Passthrough, Columns: All()}

	_, err := NewColumnTransformer([]Spec{ok, {Name: "a", Action: Drop, Columns: All()}})
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.True(t, IsConfigError(err))

	_, err = NewColumnTransformer([]Spec{{Name: RemainderName, Action: Drop, Columns: All()}})
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = NewColumnTransformer([]Spec{{Name: "b", Columns: All()}})
	require.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewColumnTransformer([]Spec{{Name: "b", Action: Apply(nil), Columns: All()}})
	require.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewColumnTransformer([]Spec{{Name: "b", Action: Drop}})
	require.ErrorIs(t, err, ErrInvalidSelector)

	_, err = NewColumnTransformer([]Spec{ok}, WithRemainder(Action{}))
	require.ErrorIs(t, err, ErrInvalidRemainder)

	_, err = NewColumnTransformer([]Spec{ok}, WithSparseThreshold(1.5))
	require.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = NewColumnTransformer([]Spec{ok}, WithWeights(map[string]float64{"zzz": 2}))
	require.ErrorIs(t, err, ErrUnknownSpec)

	_, err = NewColumnTransformer([]Spec{ok}, WithWeights(map[string]float64{"a": 2, RemainderName: 1}))
	require.NoError(t, err)
}

func TestColumnTransformer_TransformBeforeFit(t *testing.T) {
	ct, err := NewColumnTransformer([]Spec{{Name: "a", Action: Passthrough, Columns: All()}})
	require.NoError(t, err)
	_, err = ct.Transform(context.Background(), scalarFrame(t))
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestColumnTransformer_DenseStackRowsAndColumns(t *testing.T) {
	ctx := context.Background()
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "id", Action: Apply(identity()), Columns: ByName("a", "b")},
		{Name: "dbl", Action: Apply(doubler()), Columns: ByName("c")},
	}, WithPreserveFrame(false))
	require.NoError(t, err)

	out, err := ct.FitTransform(ctx, x, nil)
	require.NoError(t, err)
	assert.Equal(t, block.RepDense, out.Representation())
	assert.Equal(t, x.NRows(), out.Rows())
	assert.Equal(t, 3, out.Cols())
	assert.Equal(t, [][]float64{
		{1, 10, 200},
		{2, 20, 400},
		{3, 30, 600},
		{4, 40, 800},
	}, denseRows(t, out))

	rep, ok := ct.OutputRepresentation()
	require.True(t, ok)
	assert.Equal(t, block.RepDense, rep)
}

func TestColumnTransformer_OverlappingSelectorsAddColumns(t *testing.T) {
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "p", Action: Apply(identity()), Columns: ByName("a", "b")},
		{Name: "q", Action: Apply(identity()), Columns: ByName("b", "c")},
	})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Rows())
	assert.Equal(t, 4, out.Cols())
	assert.Equal(t, []string{"p__a", "p__b", "q__b", "q__c"}, tableOf(t, out).Names())
}

func TestColumnTransformer_NameCollisionIsPrefixed(t *testing.T) {
	x, err := panel.FromTable([]string{"r0", "r1"}, []string{"x", "z"}, [][]float64{{1, 9}, {2, 8}})
	require.NoError(t, err)

	ct, err := NewColumnTransformer([]Spec{
		{Name: "a", Action: Apply(identity()), Columns: ByName("x")},
		{Name: "b", Action: Passthrough, Columns: ByName("x")},
	})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	f := tableOf(t, out)
	assert.Equal(t, []string{"a__x", "b__x"}, f.Names())
	assert.Equal(t, []string{"r0", "r1"}, f.Index())
}

func TestColumnTransformer_DisjointKeepsNames(t *testing.T) {
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "p", Action: Apply(identity()), Columns: ByName("c")},
		{Name: "q", Action: Passthrough, Columns: ByName("a")},
	})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	f := tableOf(t, out)
	assert.Equal(t, []string{"c", "a"}, f.Names())
	assert.Equal(t, x.Index(), f.Index())
}

func TestColumnTransformer_DisjointButCollidingOutputsArePrefixed(t *testing.T) {
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "p", Action: Apply(doubler()), Columns: ByName("a")},
		{Name: "q", Action: Apply(identity()), Columns: ByName("b")},
		{Name: "r", Action: Apply(doubler()), Columns: ByName("c")},
	})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p__0", "q__b", "r__0"}, tableOf(t, out).Names())
}

func TestColumnTransformer_SparseWithDenseIsDensified(t *testing.T) {
	x := tallFrame(t, 10)
	sparse := sparseBlock(t, 10, 10, 10)
	dense, err := block.NewDense(10, 10, nil)
	require.NoError(t, err)

	ct, err := NewColumnTransformer([]Spec{
		{Name: "sparse", Action: Apply(returning(sparse)), Columns: All()},
		{Name: "dense", Action: Apply(returning(dense)), Columns: All()},
	}, WithSparseThreshold(0.3))
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	assert.Equal(t, block.RepDense, out.Representation())
	assert.Equal(t, 10, out.Rows())
	assert.Equal(t, 20, out.Cols())
}

func TestColumnTransformer_LowDensityStaysSparse(t *testing.T) {
	x := tallFrame(t, 10)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "s1", Action: Apply(returning(sparseBlock(t, 10, 10, 10))), Columns: All()},
		{Name: "s2", Action: Apply(returning(sparseBlock(t, 10, 5, 5))), Columns: All()},
	}, WithSparseThreshold(0.3))
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	require.Equal(t, block.RepSparse, out.Representation())
	assert.Equal(t, 15, out.Cols())
	assert.Equal(t, 15, out.NNZ())
}

func TestChooseRepresentation(t *testing.T) {
	d, err := block.NewDense(4, 2, nil)
	require.NoError(t, err)
	tbl := block.NewTable(tallFrame(t, 4))
	s := sparseBlock(t, 4, 4, 1)

	assert.Equal(t, block.RepDense, chooseRepresentation([]block.Block{d}, 0.3, true))
	assert.Equal(t, block.RepTable, chooseRepresentation([]block.Block{d, tbl}, 0.3, true))
	assert.Equal(t, block.RepDense, chooseRepresentation([]block.Block{d, tbl}, 0.3, false))
	assert.Equal(t, block.RepSparse, chooseRepresentation([]block.Block{s, tbl}, 0.5, true))
	assert.Equal(t, block.RepDense, chooseRepresentation([]block.Block{s, tbl}, 0.2, true))
	assert.Equal(t, block.RepDense, chooseRepresentation(nil, 0.3, true))
}

func TestColumnTransformer_Remainder(t *testing.T) {
	ctx := context.Background()
	x := scalarFrame(t)
	specs := []Spec{{Name: "p", Action: Apply(doubler()), Columns: ByName("b")}}

	t.Run("drop", func(t *testing.T) {
		ct, err := NewColumnTransformer(specs)
		require.NoError(t, err)
		out, err := ct.FitTransform(ctx, x, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, out.Cols())

		fitted := ct.Fitted()
		require.Len(t, fitted, 2)
		assert.Equal(t, RemainderName, fitted[1].Name)
		assert.True(t, fitted[1].Action.IsDrop())
		assert.Equal(t, []string{"a", "c"}, fitted[1].Columns)
	})

	t.Run("passthrough", func(t *testing.T) {
		ct, err := NewColumnTransformer(specs, WithRemainder(Passthrough), WithPreserveFrame(false))
		require.NoError(t, err)
		out, err := ct.FitTransform(ctx, x, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{20, 1, 100}, denseRows(t, out)[0])
	})

	t.Run("transformer", func(t *testing.T) {
		ct, err := NewColumnTransformer(specs, WithRemainder(Apply(doubler())))
		require.NoError(t, err)
		out, err := ct.FitTransform(ctx, x, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{20, 2, 200}, denseRows(t, out)[0])

		a, err := ct.Named(RemainderName)
		require.NoError(t, err)
		rt, ok := a.Transformer()
		require.True(t, ok)
		assert.Equal(t, []string{"a", "c"}, rt.(*fakeTransformer).fitCols)
	})
}

func TestColumnTransformer_TemplatesStayUnfitted(t *testing.T) {
	tmpl := identity()
	ct, err := NewColumnTransformer([]Spec{{Name: "p", Action: Apply(tmpl), Columns: ByName("a")}})
	require.NoError(t, err)

	a, err := ct.Named("p")
	require.NoError(t, err)
	before, _ := a.Transformer()
	assert.Same(t, tmpl, before)

	require.NoError(t, ct.Fit(context.Background(), scalarFrame(t), nil))
	assert.False(t, tmpl.fitted)

	a, err = ct.Named("p")
	require.NoError(t, err)
	after, ok := a.Transformer()
	require.True(t, ok)
	assert.NotSame(t, tmpl, after)
	assert.True(t, after.(*fakeTransformer).fitted)

	_, err = ct.Named("nope")
	require.ErrorIs(t, err, ErrUnknownSpec)
}

func TestColumnTransformer_NamedKeepsDropAndPassthrough(t *testing.T) {
	ct, err := NewColumnTransformer([]Spec{
		{Name: "gone", Action: Drop, Columns: ByName("a")},
		{Name: "raw", Action: Passthrough, Columns: ByName("b")},
	}, WithRemainder(Drop))
	require.NoError(t, err)

	check := func() {
		a, err := ct.Named("gone")
		require.NoError(t, err)
		assert.True(t, a.IsDrop())
		_, ok := a.Transformer()
		assert.False(t, ok)

		a, err = ct.Named("raw")
		require.NoError(t, err)
		assert.True(t, a.IsPassthrough())

		a, err = ct.Named(RemainderName)
		require.NoError(t, err)
		assert.True(t, a.IsDrop())
	}
	check()
	require.NoError(t, ct.Fit(context.Background(), scalarFrame(t), nil))
	check()
}

func TestColumnTransformer_EmptySelectionIsInert(t *testing.T) {
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "none", Action: Apply(identity()), Columns: ByMask(false, false, false)},
		{Name: "all", Action: Passthrough, Columns: All()},
	})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Cols())

	a, err := ct.Named("none")
	require.NoError(t, err)
	inert, _ := a.Transformer()
	assert.False(t, inert.(*fakeTransformer).fitted)
}

func TestColumnTransformer_AllDroppedGivesEmptyDense(t *testing.T) {
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{{Name: "d", Action: Drop, Columns: All()}})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Rows())
	assert.Equal(t, 0, out.Cols())
}

func TestColumnTransformer_TransformUsesFittedNames(t *testing.T) {
	ctx := context.Background()
	ct, err := NewColumnTransformer([]Spec{{Name: "p", Action: Passthrough, Columns: ByIndex(0)}})
	require.NoError(t, err)
	require.NoError(t, ct.Fit(ctx, scalarFrame(t), nil))

	reordered, err := scalarFrame(t).SelectNames([]string{"c", "a", "b"})
	require.NoError(t, err)
	out, err := ct.Transform(ctx, reordered)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tableOf(t, out).Names())

	missing, err := scalarFrame(t).SelectNames([]string{"b", "c"})
	require.NoError(t, err)
	_, err = ct.Transform(ctx, missing)
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestColumnTransformer_ShapeErrors(t *testing.T) {
	ctx := context.Background()
	x := scalarFrame(t)

	ct, err := NewColumnTransformer([]Spec{
		{Name: "vec", Action: Apply(returning(&block.Vector{Values: []float64{1, 2, 3, 4}})), Columns: All()},
	})
	require.NoError(t, err)
	_, err = ct.FitTransform(ctx, x, nil)
	require.ErrorIs(t, err, ErrShape)
	assert.Contains(t, err.Error(), `"vec"`)
	assert.True(t, IsShapeError(err))

	short, err := block.NewDense(3, 1, nil)
	require.NoError(t, err)
	ct, err = NewColumnTransformer([]Spec{{Name: "short", Action: Apply(returning(short)), Columns: All()}})
	require.NoError(t, err)
	_, err = ct.FitTransform(ctx, x, nil)
	require.ErrorIs(t, err, ErrShape)
}

func TestColumnTransformer_ColumnBlockIsOneColumnTable(t *testing.T) {
	x := scalarFrame(t)
	col := &block.Column{Col: panel.ScalarColumn("score", []float64{1, 2, 3, 4})}
	ct, err := NewColumnTransformer([]Spec{{Name: "s", Action: Apply(returning(col)), Columns: All()}})
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	f := tableOf(t, out)
	assert.Equal(t, []string{"score"}, f.Names())
	assert.Equal(t, x.Index(), f.Index())
}

func TestColumnTransformer_NestedColumnsCannotBeDensified(t *testing.T) {
	ct, err := NewColumnTransformer([]Spec{{Name: "p", Action: Passthrough, Columns: All()}}, WithPreserveFrame(false))
	require.NoError(t, err)
	_, err = ct.FitTransform(context.Background(), nestedFrame(t), nil)
	require.ErrorIs(t, err, block.ErrNotNumeric)
}

func TestColumnTransformer_Weights(t *testing.T) {
	x := scalarFrame(t)
	ct, err := NewColumnTransformer([]Spec{
		{Name: "p", Action: Passthrough, Columns: ByName("a")},
		{Name: "q", Action: Apply(doubler()), Columns: ByName("b")},
	}, WithWeights(map[string]float64{"p": 3, "q": 0.5}), WithPreserveFrame(false))
	require.NoError(t, err)

	out, err := ct.FitTransform(context.Background(), x, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 10}, denseRows(t, out)[0])
	assert.Equal(t, float64(1), x.Column(0).Values[0])
}

func TestColumnTransformer_UnitErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	ct, err := NewColumnTransformer([]Spec{
		{Name: "bad", Action: Apply(&fakeTransformer{fitErr: boom}), Columns: All()},
	})
	require.NoError(t, err)

	err = ct.Fit(context.Background(), scalarFrame(t), nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"bad"`)

	_, err = ct.Transform(context.Background(), scalarFrame(t))
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestColumnTransformer_TargetLength(t *testing.T) {
	ct, err := NewColumnTransformer([]Spec{{Name: "p", Action: Passthrough, Columns: All()}})
	require.NoError(t, err)
	err = ct.Fit(context.Background(), scalarFrame(t), []float64{1})
	require.ErrorIs(t, err, ErrTargetLength)
}

func TestColumnTransformer_DeterministicAcrossJobs(t *testing.T) {
	ctx := context.Background()
	x := scalarFrame(t)
	specs := []Spec{
		{Name: "p", Action: Apply(doubler()), Columns: ByName("a")},
		{Name: "q", Action: Apply(identity()), Columns: ByName("b", "c")},
		{Name: "r", Action: Apply(doubler()), Columns: ByIndex(-1)},
	}

	seq, err := NewColumnTransformer(specs)
	require.NoError(t, err)
	par, err := NewColumnTransformer(specs, WithJobs(-1))
	require.NoError(t, err)

	want, err := seq.FitTransform(ctx, x, nil)
	require.NoError(t, err)
	again, err := seq.Transform(ctx, x)
	require.NoError(t, err)
	got, err := par.FitTransform(ctx, x, nil)
	require.NoError(t, err)

	assert.Equal(t, denseRows(t, want), denseRows(t, again))
	assert.Equal(t, denseRows(t, want), denseRows(t, got))
	assert.Equal(t, tableOf(t, want).Names(), tableOf(t, got).Names())
}

func TestColumnTransformer_CloneIsUnfitted(t *testing.T) {
	ct, err := NewColumnTransformer([]Spec{{Name: "p", Action: Passthrough, Columns: All()}}, WithSparseThreshold(0.5))
	require.NoError(t, err)
	require.NoError(t, ct.Fit(context.Background(), scalarFrame(t), nil))

	c := ct.Clone().(*ColumnTransformer)
	assert.Empty(t, c.Fitted())
	assert.Equal(t, 0.5, c.threshold)
	_, err = c.Transform(context.Background(), scalarFrame(t))
	require.ErrorIs(t, err, ErrNotFitted)
}

type recordingObserver struct {
	fits, transforms, blocks, instances int
}

func (r *recordingObserver) ObserveFit(string)                      { r.fits++ }
func (r *recordingObserver) ObserveTransform(string, time.Duration) { r.transforms++ }
func (r *recordingObserver) ObserveBlock(string)                    { r.blocks++ }
func (r *recordingObserver) ObserveInstances(_ string, n int)       { r.instances += n }

func TestColumnTransformer_Observer(t *testing.T) {
	obs := &recordingObserver{}
	ct, err := NewColumnTransformer([]Spec{
		{Name: "p", Action: Apply(identity()), Columns: ByName("a")},
		{Name: "q", Action: Passthrough, Columns: ByName("b")},
	}, WithMetrics(obs))
	require.NoError(t, err)

	_, err = ct.FitTransform(context.Background(), scalarFrame(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, obs.fits)
	assert.Equal(t, 1, obs.transforms)
	assert.Equal(t, 1, obs.blocks)
}
