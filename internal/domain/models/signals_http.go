package models

import "time"

// Requests for the HTTP API. Defined in domain for reuse by handlers and tests.

type AnalysisRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	Timeframes string `query:"timeframes" json:"timeframes" default:"1h,4h,1d"`
	Full       bool   `query:"full" json:"full"`
}

type ConsensusRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	Timeframes string `query:"timeframes" json:"timeframes" default:"1h,4h,1d"`
	Quorum     int    `query:"quorum" json:"quorum" default:"2" validate:"gte=1,lte=50"`
}

type CombineRequest struct {
	AI        EngineOutput `json:"ai"`
	Analytics EngineOutput `json:"analytics"`
	Symbol    string       `json:"symbol" validate:"required"`
	Timeframe string       `json:"timeframe" default:"1h"`
	Weights   *Weights     `json:"weights"`
}

type OpenTradeRequest struct {
	Signal     StandardSignal `json:"signal"`
	EntryPrice float64        `json:"entry_price" validate:"gt=0"`
	Direction  string         `json:"direction" validate:"omitempty,oneof=long short"`
	EntryTime  *time.Time     `json:"entry_time"`
}

type UpdateTradeRequest struct {
	Price    float64        `json:"price" validate:"gt=0"`
	Score    float64        `json:"score"`
	Analysis *TradeAnalysis `json:"analysis"`
}

type CloseTradeRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

type ListTradesRequest struct {
	Status string `query:"status" json:"status" validate:"omitempty,oneof=open closed"`
}

// AnalysisResponse is the payload of the analysis endpoint.
type AnalysisResponse struct {
	Result    *MultiTimeframeResult  `json:"result"`
	Tags      map[string][]SignalTag `json:"tags"`
	Consensus []SignalTag            `json:"consensus"`
}

// ConsensusResponse is the payload of the consensus endpoint.
type ConsensusResponse struct {
	Symbol    string                 `json:"symbol"`
	Quorum    int                    `json:"quorum"`
	Tags      map[string][]SignalTag `json:"tags"`
	Consensus []SignalTag            `json:"consensus"`
	Errors    map[string]string      `json:"errors,omitempty"`
}

// SourceInfo describes a bar source and whether it can serve requests.
type SourceInfo struct {
	Name       string `json:"name"`
	Capability string `json:"capability"`
}

// RiskRequest profiles a trade plan. Equity is an optional equity curve for
// the drawdown figure.
type RiskRequest struct {
	Balance  float64   `json:"balance" validate:"gt=0"`
	RiskPct  float64   `json:"risk_pct" default:"0.01" validate:"gt=0,lte=1"`
	Entry    float64   `json:"entry" validate:"gt=0"`
	Stop     float64   `json:"stop" validate:"gt=0"`
	Targets  []float64 `json:"targets" validate:"min=1,dive,gt=0"`
	Leverage float64   `json:"leverage" default:"1" validate:"gte=1"`
	WinRate  float64   `json:"win_rate" default:"0.5" validate:"gte=0,lte=1"`
	Equity   []float64 `json:"equity"`
}
