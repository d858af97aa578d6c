package api

import (
	"fmt"
	"sort"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/usecase"
	xhttp "FinSignal/pkg/http"
	"FinSignal/pkg/util"

	"github.com/labstack/echo/v4"
)

func (h *Handler) timeframes(raw string) []string {
	if tfs := domrepo.SplitTimeframes(raw); len(tfs) > 0 {
		return tfs
	}
	return h.cfg.Timeframes
}

// Analysis runs the multi-timeframe pipeline for one symbol.
func (h *Handler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.NormalizeSymbol(req.Symbol)
	tfs := h.timeframes(req.Timeframes)
	full := req.Full || h.Orchestrator.Full()
	key := fmt.Sprintf("analysis:%s:%s:%t", symbol, strings.Join(tfs, ","), full)

	return h.cached(c, key, func() (interface{}, error) {
		res, err := h.Orchestrator.AnalyzeMode(c.Request().Context(), symbol, tfs, full)
		if err != nil {
			return nil, err
		}
		tags := h.Generator.Generate(res)
		return &models.AnalysisResponse{
			Result:    res,
			Tags:      tags,
			Consensus: usecase.Consensus(tags, usecase.DefaultQuorum),
		}, nil
	})
}

// Consensus returns only the tag lists and their consensus.
func (h *Handler) Consensus(c echo.Context) error {
	req := &models.ConsensusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.NormalizeSymbol(req.Symbol)
	tfs := h.timeframes(req.Timeframes)
	key := fmt.Sprintf("consensus:%s:%s:%d", symbol, strings.Join(tfs, ","), req.Quorum)

	return h.cached(c, key, func() (interface{}, error) {
		res, err := h.Orchestrator.Analyze(c.Request().Context(), symbol, tfs)
		if err != nil {
			return nil, err
		}
		tags := h.Generator.Generate(res)
		return &models.ConsensusResponse{
			Symbol:    symbol,
			Quorum:    req.Quorum,
			Tags:      tags,
			Consensus: usecase.Consensus(tags, req.Quorum),
			Errors:    res.Errors,
		}, nil
	})
}

// Sources lists the bar sources with their capability.
func (h *Handler) Sources(c echo.Context) error {
	out := []models.SourceInfo{}
	if h.Deps.Sources != nil {
		for name, capability := range h.Deps.Sources.Names() {
			out = append(out, models.SourceInfo{Name: name, Capability: capability})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return xhttp.ListResponse(c, out, int64(len(out)))
}
