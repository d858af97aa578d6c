package usecase

import (
	"sort"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/detectors"
)

// DefaultQuorum is the occurrence count a tag needs to enter the consensus.
const DefaultQuorum = 2

var (
	patternTags = map[models.PatternKind]models.SignalTag{
		models.PatternDoubleBottom:       models.TagBullishReversal,
		models.PatternDoubleTop:          models.TagBearishReversal,
		models.PatternHeadShoulders:      models.TagTrendReversalWarning,
		models.PatternTriangleAscending:  models.TagBullishBreakout,
		models.PatternTriangleDescending: models.TagBearishBreakout,
	}
	whaleTags = map[models.WhaleKind]models.SignalTag{
		models.WhaleCandle: models.TagHeavyVolumeInflow,
		models.Spoofing:    models.TagManipulationWarning,
		models.WashTrading: models.TagSuspiciousActivity,
	}
	divergenceKeys = []string{
		detectors.KeyRSIRegular,
		detectors.KeyRSIHidden,
		detectors.KeyMACDRegular,
		detectors.KeyMACDHidden,
	}
)

// SignalGenerator maps detector output to signal tags.
type SignalGenerator struct {
	recentBars     int
	majorLegFactor float64
}

// NewSignalGenerator builds a generator. recentBars is how close to the last
// bar a divergence must end to count; majorLegFactor is the multiple of the
// mean leg length the last leg must reach.
func NewSignalGenerator(recentBars int, majorLegFactor float64) *SignalGenerator {
	if recentBars <= 0 {
		recentBars = 3
	}
	if majorLegFactor <= 0 {
		majorLegFactor = 1.5
	}
	return &SignalGenerator{recentBars: recentBars, majorLegFactor: majorLegFactor}
}

// Generate returns the tag list per successful timeframe. Duplicates within a
// list are preserved.
func (g *SignalGenerator) Generate(res *models.MultiTimeframeResult) map[string][]models.SignalTag {
	out := make(map[string][]models.SignalTag, len(res.Bundles))
	for tf, b := range res.Bundles {
		out[tf] = g.Tags(b)
	}
	return out
}

// Tags applies the fixed rules in order patterns, whale, pivots, trend,
// divergence.
func (g *SignalGenerator) Tags(b *models.TimeframeBundle) []models.SignalTag {
	tags := []models.SignalTag{}
	for _, kind := range models.PatternKinds {
		if len(b.Patterns[kind]) > 0 {
			tags = append(tags, patternTags[kind])
		}
	}
	for _, kind := range models.WhaleKinds {
		if len(b.Whale[kind]) > 0 {
			tags = append(tags, whaleTags[kind])
		}
	}
	if tag, ok := g.majorLeg(b.Legs); ok {
		tags = append(tags, tag)
	}
	if b.Trend != nil {
		switch b.Trend.Current {
		case models.PhaseUptrend:
			tags = append(tags, models.TagTrendUp)
		case models.PhaseDowntrend:
			tags = append(tags, models.TagTrendDown)
		}
	}
	for _, key := range divergenceKeys {
		events := b.Divergences[key]
		if len(events) == 0 {
			continue
		}
		last := events[len(events)-1]
		if last.Index < b.Bars-g.recentBars {
			continue
		}
		if last.Type == models.Bullish {
			tags = append(tags, models.TagBullishDivergence)
		} else {
			tags = append(tags, models.TagBearishDivergence)
		}
	}
	return tags
}

func (g *SignalGenerator) majorLeg(legs []models.Leg) (models.SignalTag, bool) {
	if len(legs) == 0 {
		return "", false
	}
	var sum float64
	for _, l := range legs {
		sum += l.Length
	}
	mean := sum / float64(len(legs))
	last := legs[len(legs)-1]
	if mean == 0 || last.Length < g.majorLegFactor*mean {
		return "", false
	}
	if last.Direction == models.DirectionUp {
		return models.TagMajorPivotUp, true
	}
	return models.TagMajorPivotDown, true
}

// Consensus returns the distinct tags whose total count across all lists is
// at least quorum, ordered by count descending then tag. quorum <= 0 uses
// DefaultQuorum.
func Consensus(tags map[string][]models.SignalTag, quorum int) []models.SignalTag {
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	counts := map[models.SignalTag]int{}
	for _, list := range tags {
		for _, t := range list {
			counts[t]++
		}
	}
	out := []models.SignalTag{}
	for t, n := range counts {
		if n >= quorum {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
