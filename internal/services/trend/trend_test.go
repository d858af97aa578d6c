package trend

import (
	"testing"
	"time"

	"FinSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBar(t *testing.T) {
	tests := []struct {
		name                 string
		close, ema, sma, adx float64
		want                 models.TrendPhase
	}{
		{"uptrend", 110, 105, 100, 30, models.PhaseUptrend},
		{"downtrend", 90, 95, 100, 30, models.PhaseDowntrend},
		{"range ignores ordering", 110, 105, 100, 15, models.PhaseRange},
		{"range with inverted averages", 90, 105, 100, 15, models.PhaseRange},
		{"neutral between thresholds", 110, 105, 100, 22, models.PhaseNeutral},
		{"neutral on mixed ordering", 104, 105, 100, 30, models.PhaseNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBar(tt.close, tt.ema, tt.sma, tt.adx))
		})
	}
}

func TestClassifyEmptyIsNeutral(t *testing.T) {
	res := Classify(nil, DefaultConfig())
	assert.Equal(t, models.PhaseNeutral, res.Summary.Current)
	assert.Empty(t, res.Phases)
	assert.Nil(t, res.Summary.LastADX)
}

func TestClassifyShortSeriesIsNeutral(t *testing.T) {
	s := models.Series{{Timestamp: time.Unix(0, 0), Open: 1, High: 2, Low: 1, Close: 2, Volume: 1}}
	res := Classify(s, DefaultConfig())
	require.Len(t, res.Phases, 1)
	assert.Equal(t, models.PhaseNeutral, res.Summary.Current)
	require.NotNil(t, res.Summary.LastEMA)
	assert.Nil(t, res.Summary.LastSMA)
}

func TestClassifySteadyRise(t *testing.T) {
	s := make(models.Series, 80)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range s {
		f := float64(i)
		s[i] = models.Bar{Timestamp: t0.Add(time.Duration(i) * time.Hour), Open: 100 + f, High: 101 + f, Low: 99 + f, Close: 100.5 + f, Volume: 1}
	}
	res := Classify(s, DefaultConfig())
	assert.Equal(t, models.PhaseUptrend, res.Summary.Current)
	require.NotNil(t, res.Summary.LastADX)
	assert.Greater(t, *res.Summary.LastADX, 25.0)
}
