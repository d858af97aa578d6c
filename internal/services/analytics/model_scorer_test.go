package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	domsvc "FinSignal/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPModelScorerScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ScorePath, r.URL.Path)
		var req domsvc.ScoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BTCUSDT", req.Symbol)
		assert.Equal(t, 0.5, req.Features["rsi"])
		_, _ = w.Write([]byte(`{"signal":"BUY","confidence":1.4,"score":0.7,"targets":[110],"reasons":["momentum"]}`))
	}))
	defer srv.Close()

	s := NewHTTPModelScorer(NewHTTPServiceBase(srv.URL, time.Second), 0)
	out, err := s.Score(context.Background(), domsvc.ScoreRequest{Symbol: "BTCUSDT", Timeframe: "1h", Features: map[string]float64{"rsi": 0.5}})
	require.NoError(t, err)
	assert.Equal(t, models.SignalBuy, out.Signal)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Equal(t, []float64{110}, out.Targets)
	assert.Equal(t, []string{"momentum"}, out.Reasons)
}

func TestHTTPModelScorerRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"signal":"sell","confidence":0.3}`))
	}))
	defer srv.Close()

	base := NewHTTPServiceBase(srv.URL, time.Second)
	base.backoff = time.Millisecond
	out, err := NewHTTPModelScorer(base, 2).Score(context.Background(), domsvc.ScoreRequest{Symbol: "ETH"})
	require.NoError(t, err)
	assert.Equal(t, models.SignalSell, out.Signal)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestHTTPModelScorerDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	base := NewHTTPServiceBase(srv.URL, time.Second)
	base.backoff = time.Millisecond
	_, err := NewHTTPModelScorer(base, 3).Score(context.Background(), domsvc.ScoreRequest{Symbol: "ETH"})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestHTTPServiceBaseNotInitialized(t *testing.T) {
	err := NewHTTPServiceBase("", time.Second).PostJSON(context.Background(), "/x", nil, nil)
	assert.Error(t, err)
}

func TestParseSignal(t *testing.T) {
	assert.Equal(t, models.SignalHold, parseSignal("maybe"))
	assert.Equal(t, models.SignalSell, parseSignal(" Sell "))
}
