package api

import (
	"FinSignal/internal/domain/models"
	xhttp "FinSignal/pkg/http"
	"FinSignal/pkg/util"

	"github.com/labstack/echo/v4"
)

// Combine merges an AI and an analytics engine output into a standard signal
// and records it in the book.
func (h *Handler) Combine(c echo.Context) error {
	req := &models.CombineRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := util.NormalizeSymbol(req.Symbol)

	var sig models.StandardSignal
	if req.Weights == nil {
		sig = h.Adapter.Adapt(symbol, req.Timeframe, req.AI, req.Analytics)
	} else {
		var err error
		sig, err = h.Adapter.AdaptWith(symbol, req.Timeframe, req.AI, req.Analytics, *req.Weights)
		if err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
	}
	if h.Book != nil {
		h.Book.Put(sig)
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *Handler) ListSignals(c echo.Context) error {
	out := []models.StandardSignal{}
	if h.Book != nil {
		out = h.Book.All()
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *Handler) GetSignal(c echo.Context) error {
	symbol := util.NormalizeSymbol(c.Param("symbol"))
	if h.Book != nil {
		if sig, ok := h.Book.Get(symbol); ok {
			return xhttp.SuccessResponse(c, sig)
		}
	}
	return xhttp.AppErrorResponse(c, models.NewNotFoundError("signal", symbol))
}
