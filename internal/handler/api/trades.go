package api

import (
	"FinSignal/internal/domain/models"
	"FinSignal/internal/usecase"
	xhttp "FinSignal/pkg/http"

	"github.com/labstack/echo/v4"
)

// OpenTrade starts tracking a trade from a standard signal.
func (h *Handler) OpenTrade(c echo.Context) error {
	req := &models.OpenTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, err := h.Trades.Start(c.Request().Context(), usecase.StartParams{
		Signal:     req.Signal,
		EntryPrice: req.EntryPrice,
		Direction:  models.TradeDirection(req.Direction),
		EntryTime:  req.EntryTime,
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, t)
}

func (h *Handler) ListTrades(c echo.Context) error {
	req := &models.ListTradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	out := h.Trades.List(models.TradeStatus(req.Status))
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *Handler) GetTrade(c echo.Context) error {
	id := c.Param("id")
	t, ok := h.Trades.Get(id)
	if !ok {
		return xhttp.AppErrorResponse(c, models.NewNotFoundError("trade", id))
	}
	return xhttp.SuccessResponse(c, t)
}

// UpdateTrade applies a price observation. Closed trades are returned as is.
func (h *Handler) UpdateTrade(c echo.Context) error {
	req := &models.UpdateTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var analysis models.TradeAnalysis
	if req.Analysis != nil {
		analysis = *req.Analysis
	}
	id := c.Param("id")
	t, ok := h.Trades.Update(c.Request().Context(), id, req.Price, req.Score, analysis)
	if !ok {
		return xhttp.AppErrorResponse(c, models.NewNotFoundError("trade", id))
	}
	return xhttp.SuccessResponse(c, t)
}

func (h *Handler) CloseTrade(c echo.Context) error {
	req := &models.CloseTradeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := c.Param("id")
	t, ok := h.Trades.ManualClose(c.Request().Context(), id, req.Price)
	if !ok {
		return xhttp.AppErrorResponse(c, models.NewNotFoundError("trade", id))
	}
	return xhttp.SuccessResponse(c, t)
}
