package usecase

import (
	"testing"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/detectors"

	"github.com/stretchr/testify/assert"
)

func TestConsensus(t *testing.T) {
	tags := map[string][]models.SignalTag{
		"A": {"x"},
		"B": {"x", "x"},
		"C": {},
	}
	assert.Equal(t, []models.SignalTag{"x"}, Consensus(tags, 2))

	tags = map[string][]models.SignalTag{
		"1h": {"b", "a", "c"},
		"4h": {"a", "b"},
		"1d": {"a"},
	}
	assert.Equal(t, []models.SignalTag{"a", "b"}, Consensus(tags, 2))
	assert.Equal(t, []models.SignalTag{"a", "b"}, Consensus(tags, 0), "non-positive quorum uses default")
	assert.Equal(t, []models.SignalTag{"a", "b", "c"}, Consensus(tags, 1))
	assert.Empty(t, Consensus(tags, 4))
	assert.Empty(t, Consensus(nil, 2))
}

func TestGeneratorTags(t *testing.T) {
	g := NewSignalGenerator(3, 1.5)
	b := &models.TimeframeBundle{
		Bars: 50,
		Patterns: map[models.PatternKind][]models.PatternHit{
			models.PatternDoubleBottom:      {{Index: 10}},
			models.PatternTriangleAscending: {{Index: 20}, {Index: 21}},
			models.PatternDoubleTop:         {},
		},
		Whale: map[models.WhaleKind][]models.WhaleEvent{
			models.Spoofing:    {{Index: 3}},
			models.WhaleCandle: {{Index: 4}},
		},
		Legs: []models.Leg{
			{Length: 1, Direction: models.DirectionDown},
			{Length: 1, Direction: models.DirectionDown},
			{Length: 4, Direction: models.DirectionUp},
		},
		Trend: &models.TrendSummary{Current: models.PhaseUptrend},
		Divergences: map[string][]models.DivergenceEvent{
			detectors.KeyRSIRegular:  {{Index: 10, Type: models.Bearish}, {Index: 48, Type: models.Bullish}},
			detectors.KeyMACDRegular: {{Index: 30, Type: models.Bearish}},
		},
	}
	assert.Equal(t, []models.SignalTag{
		models.TagBullishReversal,
		models.TagBullishBreakout,
		models.TagHeavyVolumeInflow,
		models.TagManipulationWarning,
		models.TagMajorPivotUp,
		models.TagTrendUp,
		models.TagBullishDivergence,
	}, g.Tags(b))
}

func TestGeneratorMinorLegIsIgnored(t *testing.T) {
	g := NewSignalGenerator(3, 1.5)
	b := &models.TimeframeBundle{Legs: []models.Leg{
		{Length: 2, Direction: models.DirectionUp},
		{Length: 2, Direction: models.DirectionDown},
	}}
	assert.Empty(t, g.Tags(b))
}

func TestGenerateSkipsFailedTimeframes(t *testing.T) {
	g := NewSignalGenerator(0, 0)
	res := &models.MultiTimeframeResult{
		Timeframes: []string{"1h", "4h"},
		Bundles: map[string]*models.TimeframeBundle{
			"1h": {Trend: &models.TrendSummary{Current: models.PhaseDowntrend}},
		},
		Errors: map[string]string{"4h": "boom"},
	}
	got := g.Generate(res)
	assert.Equal(t, map[string][]models.SignalTag{"1h": {models.TagTrendDown}}, got)
}
