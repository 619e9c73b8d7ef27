package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRespectsCap(t *testing.T) {
	s := &Series{}
	s.Append([]float64{1, 2, 3, 4, 5}, []float64{10, 20, 30, 40, 50}, 3)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{3, 4, 5}, s.Steps)
	assert.Equal(t, []float64{30, 40, 50}, s.Values)

	// Appending more keeps only the newest samples.
	s.Append([]float64{6}, []float64{60}, 3)
	assert.Equal(t, []float64{40, 50, 60}, s.Values)
}

func TestAppendTruncatesToCommonLength(t *testing.T) {
	s := &Series{}
	s.Append([]float64{1, 2, 3}, []float64{10, 20}, 0)

	assert.Equal(t, []float64{1, 2}, s.Steps)
	assert.Equal(t, []float64{10, 20}, s.Values)
}

func TestSummaryMean(t *testing.T) {
	s := &Series{Values: []float64{1, 2, 3}}
	assert.InDelta(t, 2.0, s.Summary().Mean, 1e-12)

	assert.Equal(t, 0.0, (&Series{}).Summary().Mean)
}

func TestSmoothed(t *testing.T) {
	s := &Series{Values: []float64{10, 0}}
	smoothed := s.Smoothed()

	require.Len(t, smoothed, 2)
	assert.Equal(t, 10.0, smoothed[0])
	// 0.3*0 + 0.7*10
	assert.InDelta(t, 7.0, smoothed[1], 1e-12)
}

func TestSmoothedConstantSeries(t *testing.T) {
	s := &Series{Values: []float64{5, 5, 5, 5}}
	d := s.Detail("cpu")

	assert.Equal(t, "cpu", d.Name)
	assert.InDelta(t, 5.0, d.LastSmoothed(), 1e-9)
	assert.InDelta(t, 5.0, d.Mean, 1e-12)
}

func TestLastSmoothedEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Detail{}.LastSmoothed())
}

func TestCollectionAppendCreatesSeries(t *testing.T) {
	c := NewCollection(2)

	assert.Nil(t, c.Get("process.1.cpu"))

	c.Append("process.1.cpu", []float64{1}, []float64{0.5})
	c.Append("process.1.cpu", []float64{2, 3}, []float64{0.6, 0.7})

	s := c.Get("process.1.cpu")
	require.NotNil(t, s)
	assert.Equal(t, []float64{0.6, 0.7}, s.Values, "cap applies across appends")
}
