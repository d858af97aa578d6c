package models

import "time"

// SignalTag is a short label describing the trading implication of detector output.
type SignalTag string

const (
	TagBullishReversal      SignalTag = "bullish_reversal"
	TagBearishReversal      SignalTag = "bearish_reversal"
	TagTrendReversalWarning SignalTag = "trend_reversal_warning"
	TagBullishBreakout      SignalTag = "bullish_breakout"
	TagBearishBreakout      SignalTag = "bearish_breakout"
	TagHeavyVolumeInflow    SignalTag = "heavy_volume_inflow"
	TagManipulationWarning  SignalTag = "manipulation_warning"
	TagSuspiciousActivity   SignalTag = "suspicious_activity"
	TagMajorPivotUp         SignalTag = "major_pivot_up"
	TagMajorPivotDown       SignalTag = "major_pivot_down"
	TagTrendUp              SignalTag = "trend_up"
	TagTrendDown            SignalTag = "trend_down"
	TagBullishDivergence    SignalTag = "bullish_divergence"
	TagBearishDivergence    SignalTag = "bearish_divergence"
)

// Bias returns the directional lean of a tag, or "" for neutral warnings.
func (t SignalTag) Bias() Bias {
	switch t {
	case TagBullishReversal, TagBullishBreakout, TagMajorPivotUp, TagTrendUp, TagBullishDivergence:
		return Bullish
	case TagBearishReversal, TagBearishBreakout, TagMajorPivotDown, TagTrendDown, TagBearishDivergence,
		TagTrendReversalWarning:
		return Bearish
	default:
		return ""
	}
}

// SignalType is the actionable direction of a signal.
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
	SignalHold SignalType = "hold"
)

// EngineOutput is the common shape of the model output and the analytics output.
type EngineOutput struct {
	Signal           SignalType `json:"signal"`
	Confidence       float64    `json:"confidence"`
	Score            float64    `json:"score"`
	EntryZone        []float64  `json:"entry_zone,omitempty"`
	Targets          []float64  `json:"targets,omitempty"`
	StopLoss         *float64   `json:"stop_loss,omitempty"`
	RiskReward       *float64   `json:"risk_reward,omitempty"`
	SupportLevels    []float64  `json:"support_levels,omitempty"`
	ResistanceLevels []float64  `json:"resistance_levels,omitempty"`
	CurrentPrice     *float64   `json:"current_price,omitempty"`
	Reasons          []string   `json:"reasons,omitempty"`
	Explanation      string     `json:"explanation,omitempty"`
}

// StandardSignal is the fused signal consumed by trading and dashboard clients.
type StandardSignal struct {
	Symbol           string     `json:"symbol"`
	Timeframe        string     `json:"timeframe"`
	SignalType       SignalType `json:"signal_type"`
	EntryZone        []float64  `json:"entry_zone"`
	Targets          []float64  `json:"targets"`
	StopLoss         *float64   `json:"stop_loss"`
	Confidence       float64    `json:"confidence"`
	Score            float64    `json:"score"`
	RiskReward       *float64   `json:"risk_reward"`
	SupportLevels    []float64  `json:"support_levels"`
	ResistanceLevels []float64  `json:"resistance_levels"`
	CurrentPrice     *float64   `json:"current_price"`
	Reasons          []string   `json:"reasons"`
	Explanation      string     `json:"explanation"`
	IssuedAt         time.Time  `json:"issued_at"`
	ValidUntil       *time.Time `json:"valid_until"`
}

// Weights balance model and analytics confidence.
type Weights struct {
	AI        float64 `json:"ai" yaml:"ai" validate:"gte=0"`
	Analytics float64 `json:"analytics" yaml:"analytics" validate:"gte=0"`
}

// DefaultWeights splits confidence evenly.
func DefaultWeights() Weights { return Weights{AI: 0.5, Analytics: 0.5} }

// Alert is emitted by the live monitor for each analyzed symbol.
type Alert struct {
	ID       string                 `json:"id"`
	Symbol   string                 `json:"symbol"`
	Signals  []SignalTag            `json:"signals"`
	Time     time.Time              `json:"time"`
	Details  map[string][]SignalTag `json:"details"`
	Failures map[string]string      `json:"failures,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Clone returns a deep copy.
func (s StandardSignal) Clone() StandardSignal {
	out := s
	out.EntryZone = append([]float64(nil), s.EntryZone...)
	out.Targets = append([]float64(nil), s.Targets...)
	out.SupportLevels = append([]float64(nil), s.SupportLevels...)
	out.ResistanceLevels = append([]float64(nil), s.ResistanceLevels...)
	out.Reasons = append([]string(nil), s.Reasons...)
	out.StopLoss = clonePtr(s.StopLoss)
	out.RiskReward = clonePtr(s.RiskReward)
	out.CurrentPrice = clonePtr(s.CurrentPrice)
	if s.ValidUntil != nil {
		v := *s.ValidUntil
		out.ValidUntil = &v
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}
