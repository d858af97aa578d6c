package usecase

import (
	"context"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/detectors"
	"FinSignal/internal/services/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestratorPartialFailure(t *testing.T) {
	f := &fakeFetcher{
		series: map[domrepo.Timeframe]models.Series{
			domrepo.TF1h: waveSeries(80, time.Hour),
			domrepo.TF1d: {},
		},
		errs: map[domrepo.Timeframe]error{domrepo.TF4h: errBoom},
	}
	o := NewOrchestrator(f, NewSeriesAnalyzer(DefaultAnalyzerConfig()))

	res, err := o.Analyze(context.Background(), "BTCUSDT", []string{"1h", "4H", "1h", "1d", "2h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1h", "4h", "1d", "2h"}, res.Timeframes)

	require.Contains(t, res.Bundles, "1h")
	b := res.Bundles["1h"]
	assert.Equal(t, 80, b.Bars)
	assert.NotEmpty(t, b.Pivots)
	assert.NotEmpty(t, b.Legs)
	assert.Len(t, b.Patterns, len(models.PatternKinds))
	assert.Len(t, b.Whale, len(models.WhaleKinds))
	assert.Nil(t, b.Indicators, "fast mode skips indicators")
	assert.Nil(t, b.Trend)

	assert.Contains(t, res.Errors["4h"], "boom")
	assert.Contains(t, res.Errors["1d"], "no bars")
	assert.Contains(t, res.Errors["2h"], "unsupported timeframe")
	assert.NotContains(t, f.calls, domrepo.Timeframe("2h"))

	p, ok := res.Primary()
	require.True(t, ok)
	assert.Equal(t, "1h", p.Timeframe)
}

func TestOrchestratorFullAnalysis(t *testing.T) {
	f := &fakeFetcher{series: map[domrepo.Timeframe]models.Series{domrepo.TF1h: waveSeries(120, time.Hour)}}
	o := NewOrchestrator(f, NewSeriesAnalyzer(DefaultAnalyzerConfig()), WithFullAnalysis())
	require.True(t, o.Full())

	res, err := o.Analyze(context.Background(), "ETHUSDT", []string{"1h"})
	require.NoError(t, err)
	assert.Nil(t, res.Errors)
	b := res.Bundles["1h"]
	require.NotNil(t, b)
	assert.Len(t, b.Candles, 119)
	assert.Contains(t, b.Indicators, indicators.KeyRSI)
	require.NotNil(t, b.Trend)
	for _, key := range []string{detectors.KeyRSIRegular, detectors.KeyRSIHidden, detectors.KeyMACDRegular, detectors.KeyMACDHidden} {
		assert.Contains(t, b.Divergences, key)
	}
	assert.Len(t, b.Closes, 120)
	assert.Contains(t, b.Features, "rsi")
}

func TestOrchestratorRejectsEmptyInput(t *testing.T) {
	o := NewOrchestrator(&fakeFetcher{}, NewSeriesAnalyzer(DefaultAnalyzerConfig()))
	_, err := o.Analyze(context.Background(), " ", []string{"1h"})
	assert.ErrorIs(t, err, models.ErrData)
	_, err = o.Analyze(context.Background(), "BTC", []string{" ", ""})
	assert.ErrorIs(t, err, models.ErrData)
}
