package models

import (
	"fmt"
	"time"
)

// TradeDirection is the side of a trade.
type TradeDirection string

const (
	Long  TradeDirection = "long"
	Short TradeDirection = "short"
)

// TradeStatus moves from open to closed exactly once.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Close results besides "target_k".
const (
	ResultStopLoss = "stop_loss"
	ResultManual   = "manual"
)

// TargetResult returns the result label for the k-th (1-based) target.
func TargetResult(k int) string { return fmt.Sprintf("target_%d", k) }

// TradeAnalysis is the analytics context attached to a trade update.
type TradeAnalysis struct {
	Phase     TrendPhase        `json:"phase,omitempty"`
	Consensus []SignalTag       `json:"consensus,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
}

// TradeSnapshot is one entry of a trade's append-only history.
type TradeSnapshot struct {
	Time     time.Time     `json:"time"`
	Price    float64       `json:"price"`
	Score    float64       `json:"score"`
	Analysis TradeAnalysis `json:"analysis"`
	Comment  string        `json:"comment"`
	Status   TradeStatus   `json:"status"`
}

// ActiveTrade is the full state of a tracked trade.
type ActiveTrade struct {
	TradeID    string          `json:"trade_id"`
	Symbol     string          `json:"symbol"`
	Timeframe  string          `json:"timeframe"`
	Signal     StandardSignal  `json:"signal"`
	EntryPrice float64         `json:"entry_price"`
	EntryTime  time.Time       `json:"entry_time"`
	Direction  TradeDirection  `json:"direction"`
	Targets    []float64       `json:"targets"`
	StopLoss   *float64        `json:"stop_loss"`
	Status     TradeStatus     `json:"status"`
	ClosePrice *float64        `json:"close_price"`
	CloseTime  *time.Time      `json:"close_time"`
	Result     string          `json:"result,omitempty"`
	LastPrice  float64         `json:"last_price"`
	LastScore  float64         `json:"last_score"`
	History    []TradeSnapshot `json:"history"`
}

// Clone returns a deep copy safe to hand out to readers.
func (t *ActiveTrade) Clone() ActiveTrade {
	out := *t
	out.Targets = append([]float64(nil), t.Targets...)
	out.Signal = t.Signal.Clone()
	out.StopLoss = clonePtr(t.StopLoss)
	out.ClosePrice = clonePtr(t.ClosePrice)
	if t.CloseTime != nil {
		ct := *t.CloseTime
		out.CloseTime = &ct
	}
	out.History = make([]TradeSnapshot, len(t.History))
	for i, h := range t.History {
		h.Analysis.Consensus = append([]SignalTag(nil), h.Analysis.Consensus...)
		if h.Analysis.Notes != nil {
			notes := make(map[string]string, len(h.Analysis.Notes))
			for k, v := range h.Analysis.Notes {
				notes[k] = v
			}
			h.Analysis.Notes = notes
		}
		out.History[i] = h
	}
	return out
}
