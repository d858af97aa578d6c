package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFetcher(t *testing.T) {
	csvSrc := NewCSVSource(t.TempDir(), 5, nil)
	reg := NewSourceRegistry(csvSrc)

	f, err := reg.Fetcher("CSV")
	require.NoError(t, err)
	assert.Same(t, csvSrc, f)

	_, err = reg.Fetcher("kucoin")
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = reg.Fetcher("nasdaq")
	assert.ErrorIs(t, err, models.ErrConfiguration)

	assert.Equal(t, []string{"csv"}, reg.Implemented())
	assert.Equal(t, "unsupported", reg.Names()[SourceOKX])
}

func TestUnsupportedSourceFetch(t *testing.T) {
	for _, s := range UnsupportedSources() {
		assert.Equal(t, domrepo.Unsupported, s.Capability())
		_, err := s.FetchBars(context.Background(), "BTC", domrepo.TF1h, 10)
		assert.ErrorIs(t, err, models.ErrConfiguration, s.Name())
	}
}

const minuteCSV = `timestamp,open,high,low,close,volume
2024-01-01T00:00:00Z,1,2,0.5,1.5,10
2024-01-01T00:01:00Z,1.5,3,1,2,5
2024-01-01T00:05:00Z,2,2.5,1.5,2.2,7
2024-01-01T00:06:00Z,2.2,2.4,2,2.1,0
`

func TestCSVSourceResamples(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BTCUSDT.csv"), []byte(minuteCSV), 0o600))

	s := NewCSVSource(dir, 5, nil)
	got, err := s.FetchBars(context.Background(), "btcusdt", domrepo.TF5m, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Bar{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 15}, got[0])
	assert.Equal(t, 7.0, got[1].Volume)

	last, err := s.FetchBars(context.Background(), "BTCUSDT", domrepo.TF5m, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, 2.1, last[0].Close)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(t.TempDir(), 5, nil).FetchBars(context.Background(), "ETH", domrepo.TF1h, 10)
	assert.Error(t, err)
}

func TestReadRawBarsMissingColumn(t *testing.T) {
	raw, err := ReadRawBars(strings.NewReader("timestamp,open,high,low,close\n1700000000,1,2,0,1\n"))
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Nil(t, raw[0].Volume)
	require.NotNil(t, raw[0].Timestamp)
	assert.Equal(t, int64(1700000000), *raw[0].Timestamp)
}

func TestReadRawBarsBadNumber(t *testing.T) {
	_, err := ReadRawBars(strings.NewReader("timestamp,open\n1700000000,abc\n"))
	var de *models.DataError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "open", de.Column)
}

func TestCoinGeckoSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/ohlc", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`[[1704067200000,100,110,90,105],[1704081600000,105,120,100,118]]`))
	}))
	defer srv.Close()

	s := NewCoinGeckoSource(srv.URL+"/", time.Second, nil)
	got, err := s.FetchBars(context.Background(), "BTCUSDT", domrepo.TF4h, 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 118.0, got[1].Close)
	assert.Equal(t, 1.0, got[1].Volume)
}

func TestCoinID(t *testing.T) {
	assert.Equal(t, "ethereum", coinID("ethusdt"))
	assert.Equal(t, "pepe", coinID("PEPEUSD"))
	assert.Equal(t, "usdt", coinID("USDT"))
}

func TestDaysFor(t *testing.T) {
	assert.Equal(t, 1, daysFor(domrepo.TF1m, 500))
	assert.Equal(t, 30, daysFor(domrepo.TF1h, 500))
	assert.Equal(t, 365, daysFor(domrepo.TF1d, 500))
}

func TestCHBarSourcePlan(t *testing.T) {
	s := NewCHBarSource(nil, "finsignal", nil, nil)

	p, err := s.plan(domrepo.TF1h, 100)
	require.NoError(t, err)
	assert.Equal(t, queryPlan{table: "finsignal.candles_1h", rows: 100}, p)

	p, err = s.plan(domrepo.TF15m, 100)
	require.NoError(t, err)
	assert.Equal(t, queryPlan{table: "finsignal.candles_1m", rows: 1500, resample: true}, p)

	p, err = s.plan(domrepo.TF1w, 100)
	require.NoError(t, err)
	assert.Equal(t, maxBaseRows, p.rows)

	_, err = s.plan("2h", 10)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	noBase := NewCHBarSource(nil, "", map[domrepo.Timeframe]string{domrepo.TF1h: "h"}, nil)
	_, err = noBase.plan(domrepo.TF4h, 10)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

type fakePublisher struct {
	topic string
	key   string
	value interface{}
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, string(key), value
	return p.err
}

func TestKafkaAlertSink(t *testing.T) {
	p := &fakePublisher{}
	a := models.Alert{ID: "a1", Symbol: "BTC", Signals: []models.SignalTag{models.TagTrendUp}}
	require.NoError(t, NewKafkaAlertSink(p, "alerts").Emit(context.Background(), a))
	assert.Equal(t, "alerts", p.topic)
	assert.Equal(t, "BTC", p.key)
	assert.Equal(t, a, p.value)

	p.err = errors.New("down")
	assert.Error(t, NewKafkaAlertSink(p, "alerts").Emit(context.Background(), a))
}

func TestKafkaTradeSink(t *testing.T) {
	p := &fakePublisher{}
	sink := NewKafkaTradeSink(p, "trades")
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	require.NoError(t, sink.PublishTrade(context.Background(), models.ActiveTrade{TradeID: "t1", Symbol: "ETH", Status: models.TradeClosed}))
	ev, ok := p.value.(TradeEvent)
	require.True(t, ok)
	assert.Equal(t, "closed", ev.Event)
	assert.Equal(t, fixed, ev.Time)
	assert.Equal(t, "ETH", p.key)
}
