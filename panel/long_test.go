package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLong_RoundTripEqualLength(t *testing.T) {
	f, err := FromArrays([]string{"i0", "i1", "i2"}, []string{"x", "y"}, [][][]float64{
		{{1, 2}, {3, 4}},
		{{5, 6}, {7, 8}},
		{{9, 10}, {11, 12}},
	})
	require.NoError(t, err)

	l, err := f.ToLong()
	require.NoError(t, err)
	assert.Equal(t, 6, l.Len())
	assert.Equal(t, []string{"i0", "i0", "i1", "i1", "i2", "i2"}, l.Instances)
	assert.Equal(t, []int64{0, 1, 0, 1, 0, 1}, l.Times)
	assert.Equal(t, []float64{5, 7}, l.Values[2])

	back, err := FromLong(l)
	require.NoError(t, err)
	assert.Equal(t, f.Index(), back.Index())
	assert.Equal(t, f.Names(), back.Names())
	for j := 0; j < f.NCols(); j++ {
		assert.Equal(t, f.Column(j).Series, back.Column(j).Series)
	}
}

func TestFromLong_SortsTimeAndKeepsInstanceOrder(t *testing.T) {
	l := &Long{
		Instances: []string{"b", "a", "b", "a"},
		Times:     []int64{5, 1, 2, 0},
		Columns:   []string{"x"},
		Values:    [][]float64{{50}, {10}, {20}, {0}},
	}
	f, err := FromLong(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, f.Index())
	assert.Equal(t, Series{Index: []int64{2, 5}, Values: []float64{20, 50}}, f.Column(0).Series[0])
	assert.Equal(t, Series{Index: []int64{0, 1}, Values: []float64{0, 10}}, f.Column(0).Series[1])
}

func TestFromLong_DuplicateTime(t *testing.T) {
	l := &Long{
		Instances: []string{"a", "a"},
		Times:     []int64{1, 1},
		Columns:   []string{"x"},
		Values:    [][]float64{{1}, {2}},
	}
	_, err := FromLong(l)
	require.ErrorIs(t, err, ErrDuplicateTime)
}

func TestToLong_MisalignedIndex(t *testing.T) {
	f, err := NewFrame([]string{"a"},
		NestedColumn("x", []Series{{Index: []int64{0, 1}, Values: []float64{1, 2}}}),
		NestedColumn("y", []Series{{Index: []int64{1, 2}, Values: []float64{1, 2}}}),
	)
	require.NoError(t, err)
	_, err = f.ToLong()
	require.ErrorIs(t, err, ErrMisalignedIndex)
}
