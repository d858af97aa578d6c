package usecase

import (
	"strings"
	"time"

	"FinSignal/internal/domain/models"
)

// DefaultValidity is how long an adapted signal stays valid.
const DefaultValidity = 4 * time.Hour

// SignalAdapter fuses the model output with the analytics output.
type SignalAdapter struct {
	weights  models.Weights
	validity time.Duration
	now      func() time.Time
}

// NewSignalAdapter validates the weights. validity <= 0 uses DefaultValidity.
func NewSignalAdapter(weights models.Weights, validity time.Duration) (*SignalAdapter, error) {
	if err := checkWeights(weights); err != nil {
		return nil, err
	}
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &SignalAdapter{weights: weights, validity: validity, now: time.Now}, nil
}

// WithClock replaces the time source.
func (a *SignalAdapter) WithClock(now func() time.Time) *SignalAdapter {
	a.now = now
	return a
}

func checkWeights(w models.Weights) error {
	if w.AI < 0 || w.Analytics < 0 {
		return models.NewConfigurationError("weights", "weights must be non-negative")
	}
	return nil
}

// Adapt combines with the configured weights.
func (a *SignalAdapter) Adapt(symbol, tf string, ai, analytics models.EngineOutput) models.StandardSignal {
	return a.combine(symbol, tf, ai, analytics, a.weights)
}

// AdaptWith combines with per-call weights.
func (a *SignalAdapter) AdaptWith(symbol, tf string, ai, analytics models.EngineOutput, w models.Weights) (models.StandardSignal, error) {
	if err := checkWeights(w); err != nil {
		return models.StandardSignal{}, err
	}
	return a.combine(symbol, tf, ai, analytics, w), nil
}

// combine emits buy or sell only when both sides agree on it. Agreement
// weights the confidences and keeps the model score; anything else holds with
// half the smaller confidence and a zero score.
func (a *SignalAdapter) combine(symbol, tf string, ai, an models.EngineOutput, w models.Weights) models.StandardSignal {
	issued := a.now().UTC()
	valid := issued.Add(a.validity)

	sig := models.StandardSignal{
		Symbol:           symbol,
		Timeframe:        tf,
		SignalType:       models.SignalHold,
		EntryZone:        pick(ai.EntryZone, an.EntryZone),
		Targets:          pick(ai.Targets, an.Targets),
		StopLoss:         ai.StopLoss,
		RiskReward:       an.RiskReward,
		SupportLevels:    nonNil(an.SupportLevels),
		ResistanceLevels: nonNil(an.ResistanceLevels),
		CurrentPrice:     ai.CurrentPrice,
		Reasons:          append(append([]string{}, ai.Reasons...), an.Reasons...),
		IssuedAt:         issued,
		ValidUntil:       &valid,
	}
	if sig.StopLoss == nil {
		sig.StopLoss = an.StopLoss
	}
	if sig.CurrentPrice == nil {
		sig.CurrentPrice = an.CurrentPrice
	}

	if ai.Signal == an.Signal && (ai.Signal == models.SignalBuy || ai.Signal == models.SignalSell) {
		sig.SignalType = ai.Signal
		sig.Confidence = w.AI*ai.Confidence + w.Analytics*an.Confidence
		sig.Score = ai.Score
	} else {
		sig.Confidence = min(ai.Confidence, an.Confidence) * 0.5
	}
	sig.Explanation = explain(sig.SignalType, ai.Explanation, an.Explanation)
	return sig
}

func pick(primary, fallback []float64) []float64 {
	if len(primary) > 0 {
		return append([]float64(nil), primary...)
	}
	return nonNil(fallback)
}

func nonNil(xs []float64) []float64 {
	return append([]float64{}, xs...)
}

func explain(t models.SignalType, parts ...string) string {
	lines := []string{}
	for _, p := range parts {
		for _, line := range strings.Split(p, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	head := strings.ToUpper(string(t))
	if len(lines) == 0 {
		return head
	}
	return head + ": " + strings.Join(lines, " | ")
}
