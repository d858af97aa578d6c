package service

import (
	"context"

	"FinSignal/internal/domain/models"
)

// ScoreRequest carries the history and features handed to the external model.
type ScoreRequest struct {
	Symbol    string             `json:"symbol"`
	Timeframe string             `json:"timeframe"`
	Closes    []float64          `json:"closes"`
	Features  map[string]float64 `json:"features"`
}

// ModelScorer is the external predictive model. Its internals are out of scope;
// it returns an EngineOutput with signal, confidence, score, reasons and explanation.
type ModelScorer interface {
	Score(ctx context.Context, req ScoreRequest) (models.EngineOutput, error)
}
