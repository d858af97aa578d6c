package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/service/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu         sync.Mutex
	ticks      chan models.PriceTick
	errs       chan error
	reconnects int
	closed     bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{ticks: make(chan models.PriceTick, 16), errs: make(chan error, 1)}
}

func (s *fakeStream) Connect(context.Context) error { return nil }

func (s *fakeStream) Subscribe(context.Context) error { return nil }

func (s *fakeStream) Read(context.Context) (<-chan models.PriceTick, <-chan error) {
	return s.ticks, s.errs
}

func (s *fakeStream) Reconnect(context.Context) error {
	s.mu.Lock()
	s.reconnects++
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) IsConnected() bool { return true }

func TestRelayAcceptThrottles(t *testing.T) {
	now := t0
	limiter := ratelimit.New().WithClock(func() time.Time { return now })
	r := NewPriceRelay(newFakeStream(), nil, WithRelayLimiter(limiter), WithMaxUpdatesPerSecond(2))

	assert.True(t, r.Accept(models.PriceTick{Symbol: "BTC", Price: 1}))
	assert.True(t, r.Accept(models.PriceTick{Symbol: "BTC", Price: 2}))
	assert.False(t, r.Accept(models.PriceTick{Symbol: "BTC", Price: 3}))
	assert.True(t, r.Accept(models.PriceTick{Symbol: "ETH", Price: 3}))
	assert.False(t, r.Accept(models.PriceTick{Symbol: "", Price: 3}))
	assert.False(t, r.Accept(models.PriceTick{Symbol: "ETH", Price: 0}))

	now = now.Add(time.Second)
	assert.True(t, r.Accept(models.PriceTick{Symbol: "BTC", Price: 4}))
}

func TestRelayFlushClosesTrades(t *testing.T) {
	trades := NewTradeManager()
	tr := startLong(t, trades)
	r := NewPriceRelay(newFakeStream(), trades, WithMaxUpdatesPerSecond(0))

	r.Accept(models.PriceTick{Symbol: "BTCUSDT", Price: 100})
	r.Accept(models.PriceTick{Symbol: "BTCUSDT", Price: 112})
	closed := r.Flush(context.Background())
	assert.Equal(t, []string{tr.TradeID}, closed)
	assert.Nil(t, r.Flush(context.Background()), "pending prices are drained")

	got, _ := trades.Get(tr.TradeID)
	require.Len(t, got.History, 1, "only the latest price is applied")
	assert.Equal(t, 112.0, got.History[0].Price)
}

func TestRelayRunReconnectsAndFlushes(t *testing.T) {
	trades := NewTradeManager()
	tr := startLong(t, trades)
	stream := newFakeStream()
	r := NewPriceRelay(stream, trades, WithFlushInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	stream.errs <- errBoom
	stream.ticks <- models.PriceTick{Symbol: "BTCUSDT", Price: 121}

	require.Eventually(t, func() bool {
		got, _ := trades.Get(tr.TradeID)
		return got.Status == models.TradeClosed
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	stream.mu.Lock()
	defer stream.mu.Unlock()
	assert.GreaterOrEqual(t, stream.reconnects, 1)
	assert.True(t, stream.closed)
}
