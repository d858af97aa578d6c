// Package analytics holds clients for the external predictive model.
package analytics

import (
	"context"
	"fmt"
	"strings"

	"FinSignal/internal/domain/models"
	domsvc "FinSignal/internal/domain/service"
)

// ScorePath is the model endpoint under the configured base URL.
const ScorePath = "/model/score"

// HTTPModelScorer asks a remote model service for a signal.
type HTTPModelScorer struct {
	base    *HTTPServiceBase
	retries int
}

// NewHTTPModelScorer builds a scorer. retries counts extra attempts after the first.
func NewHTTPModelScorer(base *HTTPServiceBase, retries int) *HTTPModelScorer {
	return &HTTPModelScorer{base: base, retries: retries}
}

type scoreResp struct {
	Signal      string    `json:"signal"`
	Confidence  float64   `json:"confidence"`
	Score       float64   `json:"score"`
	EntryZone   []float64 `json:"entry_zone"`
	Targets     []float64 `json:"targets"`
	StopLoss    *float64  `json:"stop_loss"`
	Reasons     []string  `json:"reasons"`
	Explanation string    `json:"explanation"`
}

// Score posts the request and normalizes the reply. Unknown signal labels
// become hold and confidence is clamped to [0, 1].
func (s *HTTPModelScorer) Score(ctx context.Context, req domsvc.ScoreRequest) (models.EngineOutput, error) {
	var sr scoreResp
	if err := s.base.PostJSONWithRetry(ctx, ScorePath, req, &sr, s.retries+1); err != nil {
		return models.EngineOutput{}, fmt.Errorf("score %s/%s: %w", req.Symbol, req.Timeframe, err)
	}
	return models.EngineOutput{
		Signal:      parseSignal(sr.Signal),
		Confidence:  clamp01(sr.Confidence),
		Score:       sr.Score,
		EntryZone:   sr.EntryZone,
		Targets:     sr.Targets,
		StopLoss:    sr.StopLoss,
		Reasons:     sr.Reasons,
		Explanation: sr.Explanation,
	}, nil
}

func parseSignal(s string) models.SignalType {
	switch models.SignalType(strings.ToLower(strings.TrimSpace(s))) {
	case models.SignalBuy:
		return models.SignalBuy
	case models.SignalSell:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ domsvc.ModelScorer = (*HTTPModelScorer)(nil)
