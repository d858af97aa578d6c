// Package api exposes analysis, signals and trades over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"FinSignal/internal/service/cache"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/usecase"
	xhttp "FinSignal/pkg/http"
	"FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Config tunes caching and rate limiting.
type Config struct {
	CacheTTL      time.Duration
	RateCapacity  float64
	RateRefillSec float64
	Timeframes    []string // used when a request names none
}

// SourceLister reports the registered bar sources by capability.
type SourceLister interface {
	Names() map[string]string
}

// Deps are the use cases served by the handler. Nil optional members disable
// their routes' behavior: no cache means no caching, no book means 404s.
type Deps struct {
	Orchestrator *usecase.Orchestrator
	Generator    *usecase.SignalGenerator
	Adapter      *usecase.SignalAdapter
	Book         *usecase.SignalBook
	Trades       *usecase.TradeManager
	Sources      SourceLister
	Cache        cache.BytesCache
	Limiter      *ratelimit.Limiter
}

// Handler implements xhttp.Handler.
type Handler struct {
	Deps
	cfg Config
	log *logger.Logger
}

var _ xhttp.Handler = (*Handler)(nil)

func NewHandler(deps Deps, cfg Config, l *logger.Logger) *Handler {
	if l == nil {
		l = logger.Nop()
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New()
	}
	if cfg.RateCapacity <= 0 {
		cfg.RateCapacity = 20
	}
	if cfg.RateRefillSec <= 0 {
		cfg.RateRefillSec = 5
	}
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = []string{"1h", "4h", "1d"}
	}
	return &Handler{Deps: deps, cfg: cfg, log: l.With(logger.String("component", "api"))}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	limited := h.rateLimit()

	g.GET("/analysis", h.Analysis, limited)
	g.GET("/consensus", h.Consensus, limited)
	g.GET("/sources", h.Sources)

	g.POST("/risk", h.Risk)

	g.POST("/signals/combine", h.Combine)
	g.GET("/signals", h.ListSignals)
	g.GET("/signals/:symbol", h.GetSignal)

	g.POST("/trades", h.OpenTrade)
	g.GET("/trades", h.ListTrades)
	g.GET("/trades/:id", h.GetTrade)
	g.POST("/trades/:id/update", h.UpdateTrade)
	g.POST("/trades/:id/close", h.CloseTrade)
}

// rateLimit keys token buckets by client IP and route.
func (h *Handler) rateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP() + ":" + c.Path()
			if !h.Limiter.Allow(key, h.cfg.RateCapacity, h.cfg.RateRefillSec) {
				h.log.Warn("rate limited", logger.String("key", key))
				return xhttp.TooManyRequestsResponse(c)
			}
			return next(c)
		}
	}
}

// cached serves key from the cache, or runs build, stores the encoded
// response and serves it. Cache failures only cost the cache.
func (h *Handler) cached(c echo.Context, key string, build func() (interface{}, error)) error {
	ctx := c.Request().Context()
	if h.Cache != nil {
		b, ok, err := h.Cache.GetBytes(ctx, key)
		if err != nil {
			h.log.Warn("cache get failed", logger.String("key", key), logger.Error(err))
		} else if ok {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	data, err := build()
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
	if err != nil {
		h.log.Error("encode response failed", logger.String("key", key), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.Cache != nil && h.cfg.CacheTTL > 0 {
		if err := h.Cache.SetBytes(ctx, key, b, h.cfg.CacheTTL); err != nil {
			h.log.Warn("cache set failed", logger.String("key", key), logger.Error(err))
		}
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, b)
}
