package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCloses(t *testing.T) {
	tr := FromCloses([]float64{10, 0, 12, 11, -1, 15})
	require.NotNil(t, tr)
	assert.Equal(t, 10.0, tr.First)
	assert.Equal(t, 15.0, tr.Last)
	assert.Equal(t, 15.0, tr.High)
	assert.Equal(t, 10.0, tr.Low)
	assert.InDelta(t, 50.0, tr.ChangePct, 1e-9)
	assert.Equal(t, "up", tr.Direction())
}

func TestFromClosesSlope(t *testing.T) {
	tr := FromCloses([]float64{1, 2, 3, 4, 5})
	require.NotNil(t, tr)
	assert.InDelta(t, 1.0, tr.Slope, 1e-9)

	tr = FromCloses([]float64{5, 5, 5})
	require.NotNil(t, tr)
	assert.Equal(t, 0.0, tr.Slope)
	assert.Equal(t, "flat", tr.Direction())
}

func TestFromClosesTooShort(t *testing.T) {
	assert.Nil(t, FromCloses(nil))
	assert.Nil(t, FromCloses([]float64{3}))
	assert.Nil(t, FromCloses([]float64{0, -2, 4}))

	var tr *Trend
	assert.Equal(t, "flat", tr.Direction())
}
