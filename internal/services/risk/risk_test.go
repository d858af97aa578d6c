package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskReward(t *testing.T) {
	rr, ok := RiskReward(100, 95, 110)
	require.True(t, ok)
	assert.InDelta(t, 2.0, rr, 1e-12)

	_, ok = RiskReward(100, 100, 110)
	assert.False(t, ok)
}

func TestPositionSize(t *testing.T) {
	assert.InDelta(t, 4.0, PositionSize(1000, 0.01, 100, 95, 2), 1e-9)
	assert.InDelta(t, 2.0, PositionSize(1000, 0.01, 100, 95, 0), 1e-9)
	assert.Zero(t, PositionSize(1000, 0.01, 100, 100, 1))
}

func TestKelly(t *testing.T) {
	assert.InDelta(t, 0.4, Kelly(0.6, 2), 1e-12)
	assert.Zero(t, Kelly(0.2, 1))
	assert.Zero(t, Kelly(0.6, 0))
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 0.25, MaxDrawdown([]float64{100, 120, 90, 110, 130}), 1e-12)
	assert.Zero(t, MaxDrawdown(nil))
	assert.Zero(t, MaxDrawdown([]float64{1, 2, 3}))
}

func TestAnalyze(t *testing.T) {
	got := Analyze(1000, 100, 95, []float64{110, 120}, 0.01, 2, 0.6)
	require.Len(t, got, 2)
	require.NotNil(t, got[1].RiskReward)
	assert.InDelta(t, 4.0, *got[1].RiskReward, 1e-12)
	assert.InDelta(t, 0.5, got[1].KellyFraction, 1e-12)
	assert.InDelta(t, 4.0, got[0].PositionSize, 1e-9)
}
