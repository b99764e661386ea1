package meter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatioBlocks(t *testing.T) {
	r := NewRatio(2, 2)
	r.Add([]float64{1, 2})
	assert.Equal(t, 0, r.BlockCount())
	assert.True(t, math.IsNaN(r.Mean(0)))

	r.Add([]float64{3, 6})
	r.Add([]float64{5, 10})
	require.Equal(t, 1, r.BlockCount())
	assert.Equal(t, []float64{2, 4}, r.Block(0))
	assert.Equal(t, int64(3), r.Samples())

	r.Add([]float64{7, 14})
	require.Equal(t, 2, r.BlockCount())
	assert.Equal(t, 4.0, r.Mean(0))
	assert.Equal(t, 8.0, r.Mean(1))
	assert.InDelta(t, math.Sqrt(8)/math.Sqrt(2), r.StdErr(0), 1e-12)
}

func TestRatioOfProportionalChannels(t *testing.T) {
	r := NewRatio(2, 1)
	for _, v := range []float64{1, 2, 3, 4} {
		r.Add([]float64{3 * v, v})
	}
	e, err := r.RatioOf(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, e.Value, 1e-12)
	assert.InDelta(t, 0.0, e.Error, 1e-6)
	assert.InDelta(t, 1.0, e.Correlation, 1e-12)
}

func TestRatioOfNeedsBlocks(t *testing.T) {
	r := NewRatio(2, 10)
	r.Add([]float64{1, 1})
	_, err := r.RatioOf(0, 1)
	assert.ErrorIs(t, err, ErrNoBlocks)
}

func TestRatioReset(t *testing.T) {
	r := NewRatio(1, 1)
	r.Add([]float64{1})
	r.Reset()
	assert.Equal(t, 0, r.BlockCount())
	assert.Equal(t, int64(0), r.Samples())
}

func TestAcceptance(t *testing.T) {
	var a Acceptance
	assert.Equal(t, 0.0, a.Ratio())
	a.Record(true)
	a.Record(false)
	a.Record(true)
	a.Record(true)
	assert.Equal(t, 0.75, a.Ratio())
}

func TestMerge(t *testing.T) {
	a, b := NewRatio(1, 1), NewRatio(1, 1)
	a.Add([]float64{1})
	b.Add([]float64{3})
	b.Add([]float64{5})

	m := Merge(a, b)
	assert.Equal(t, 3, m.BlockCount())
	assert.Equal(t, int64(3), m.Samples())
	assert.Equal(t, 3.0, m.Mean(0))
}
