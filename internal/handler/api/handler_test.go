package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/service/cache"
	"FinSignal/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	calls atomic.Int32
}

func (f *stubFetcher) FetchBars(_ context.Context, _ string, tf domrepo.Timeframe, _ int) (models.Series, error) {
	f.calls.Add(1)
	s := make(models.Series, 60)
	for i := range s {
		base := 100 + float64(i%6)
		s[i] = models.Bar{
			Timestamp: t0.Add(time.Duration(i) * tf.Duration()),
			Open:      base,
			High:      base + 1,
			Low:       base - 1,
			Close:     base + 0.5,
			Volume:    10,
		}
	}
	return s, nil
}

type stubSources map[string]string

func (s stubSources) Names() map[string]string { return s }

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, cfg Config) (*echo.Echo, *stubFetcher) {
	t.Helper()
	fetcher := &stubFetcher{}
	adapter, err := usecase.NewSignalAdapter(models.DefaultWeights(), time.Hour)
	require.NoError(t, err)
	h := NewHandler(Deps{
		Orchestrator: usecase.NewOrchestrator(fetcher, usecase.NewSeriesAnalyzer(usecase.DefaultAnalyzerConfig())),
		Generator:    usecase.NewSignalGenerator(3, 1.5),
		Adapter:      adapter,
		Book:         usecase.NewSignalBook(),
		Trades:       usecase.NewTradeManager(usecase.WithTradeClock(func() time.Time { return t0 })),
		Sources:      stubSources{"csv": "implemented", "binance": "unsupported"},
		Cache:        cache.NewTTLCache(),
	}, cfg, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, fetcher
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestAnalysisIsCached(t *testing.T) {
	e, fetcher := newTestServer(t, Config{CacheTTL: time.Minute})

	rec := do(e, http.MethodGet, "/api/analysis?symbol=btcusdt&timeframes=1h,4h", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var resp models.AnalysisResponse
	decode(t, rec, &resp)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "BTCUSDT", resp.Result.Symbol)
	assert.Len(t, resp.Result.Bundles, 2)
	assert.Contains(t, resp.Tags, "1h")
	assert.EqualValues(t, 2, fetcher.calls.Load())

	again := do(e, http.MethodGet, "/api/analysis?symbol=btcusdt&timeframes=1h,4h", "")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "HIT", again.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestAnalysisRequiresSymbol(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	rec := do(e, http.MethodGet, "/api/analysis", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisRejectsUnknownTimeframe(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	rec := do(e, http.MethodGet, "/api/analysis?symbol=BTC&timeframes=7x", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.AnalysisResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Result.Errors, "7x")
}

func TestConsensusUsesQuorum(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	rec := do(e, http.MethodGet, "/api/consensus?symbol=BTC&timeframes=1h,4h&quorum=3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ConsensusResponse
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Quorum)
	assert.Empty(t, resp.Consensus)
}

func TestRateLimit(t *testing.T) {
	e, _ := newTestServer(t, Config{RateCapacity: 1, RateRefillSec: 0.0001})
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/consensus?symbol=BTC", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodGet, "/api/consensus?symbol=BTC", "").Code)
	// unlimited routes are unaffected
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/sources", "").Code)
}

func TestSourcesSorted(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	rec := do(e, http.MethodGet, "/api/sources", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows  []models.SourceInfo `json:"rows"`
		Total int64               `json:"total"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Rows, 2)
	assert.Equal(t, "binance", list.Rows[0].Name)
	assert.Equal(t, "unsupported", list.Rows[0].Capability)
}

func TestCombineStoresSignal(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	body := `{"symbol":"eth","timeframe":"4h",
		"ai":{"signal":"buy","confidence":0.8,"score":0.7,"targets":[110]},
		"analytics":{"signal":"buy","confidence":0.6,"score":0.5,"stop_loss":95}}`
	rec := do(e, http.MethodPost, "/api/signals/combine", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sig models.StandardSignal
	decode(t, rec, &sig)
	assert.Equal(t, models.SignalBuy, sig.SignalType)
	assert.InDelta(t, 0.7, sig.Confidence, 1e-9)
	assert.Equal(t, []float64{110}, sig.Targets)
	require.NotNil(t, sig.StopLoss)
	assert.InDelta(t, 95, *sig.StopLoss, 1e-9)

	got := do(e, http.MethodGet, "/api/signals/ETH", "")
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/signals/SOL", "").Code)
}

func TestCombineRejectsNegativeWeights(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	body := `{"symbol":"eth","ai":{"signal":"buy"},"analytics":{"signal":"buy"},"weights":{"ai":-1,"analytics":1}}`
	rec := do(e, http.MethodPost, "/api/signals/combine", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeLifecycle(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	body := `{"entry_price":100,"signal":{"symbol":"BTC","timeframe":"1h","signal_type":"buy","targets":[110],"stop_loss":95}}`
	rec := do(e, http.MethodPost, "/api/trades", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var opened models.ActiveTrade
	decode(t, rec, &opened)
	assert.Equal(t, models.Long, opened.Direction)
	assert.Equal(t, models.TradeOpen, opened.Status)

	rec = do(e, http.MethodPost, "/api/trades/"+opened.TradeID+"/update", `{"price":111,"score":0.4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.ActiveTrade
	decode(t, rec, &updated)
	assert.Equal(t, models.TradeClosed, updated.Status)
	assert.Equal(t, models.TargetResult(1), updated.Result)

	rec = do(e, http.MethodGet, "/api/trades?status=closed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Rows []models.ActiveTrade `json:"rows"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, opened.TradeID, list.Rows[0].TradeID)
}

func TestTradeManualCloseAndNotFound(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	body := `{"entry_price":100,"signal":{"symbol":"BTC","timeframe":"1h","signal_type":"sell"}}`
	rec := do(e, http.MethodPost, "/api/trades", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened models.ActiveTrade
	decode(t, rec, &opened)
	assert.Equal(t, models.Short, opened.Direction)

	rec = do(e, http.MethodPost, "/api/trades/"+opened.TradeID+"/close", `{"price":98}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var closed models.ActiveTrade
	decode(t, rec, &closed)
	assert.Equal(t, models.ResultManual, closed.Result)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/api/trades/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPost, "/api/trades/nope/close", `{"price":1}`).Code)
}

func TestOpenTradeHoldWithoutDirection(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	body := `{"entry_price":100,"signal":{"symbol":"BTC","timeframe":"1h","signal_type":"hold"}}`
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/trades", body).Code)
}

func TestRiskProfilesTargets(t *testing.T) {
	e, _ := newTestServer(t, Config{})
	body := `{"balance":10000,"risk_pct":0.01,"entry":100,"stop":95,"targets":[110,115],"equity":[100,120,90,130]}`
	rec := do(e, http.MethodPost, "/api/risk", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RiskResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Targets, 2)
	assert.InDelta(t, 20, resp.Targets[0].PositionSize, 1e-9)
	require.NotNil(t, resp.Targets[0].RiskReward)
	assert.InDelta(t, 2, *resp.Targets[0].RiskReward, 1e-9)
	assert.InDelta(t, 0.25, resp.MaxDrawdown, 1e-9)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/risk", `{"balance":1,"entry":1,"stop":1}`).Code)
}
