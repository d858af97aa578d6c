package api

import (
	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/risk"
	xhttp "FinSignal/pkg/http"

	"github.com/labstack/echo/v4"
)

// RiskResponse is the payload of the risk endpoint.
type RiskResponse struct {
	Targets     []risk.TargetAnalysis `json:"targets"`
	MaxDrawdown float64               `json:"max_drawdown"`
}

// Risk sizes a position and profiles each target of a trade plan.
func (h *Handler) Risk(c echo.Context) error {
	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, &RiskResponse{
		Targets:     risk.Analyze(req.Balance, req.Entry, req.Stop, req.Targets, req.RiskPct, req.Leverage, req.WinRate),
		MaxDrawdown: risk.MaxDrawdown(req.Equity),
	})
}
