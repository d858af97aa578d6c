package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	mu     sync.Mutex
	series map[domrepo.Timeframe]models.Series
	errs   map[domrepo.Timeframe]error
	calls  []domrepo.Timeframe
}

func (f *fakeFetcher) FetchBars(_ context.Context, _ string, tf domrepo.Timeframe, _ int) (models.Series, error) {
	f.mu.Lock()
	f.calls = append(f.calls, tf)
	f.mu.Unlock()
	if err := f.errs[tf]; err != nil {
		return nil, err
	}
	return f.series[tf], nil
}

type recordingSink struct {
	mu     sync.Mutex
	alerts []models.Alert
	err    error
}

func (s *recordingSink) Emit(_ context.Context, a models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, a)
	return nil
}

type recordingTradeSink struct {
	mu     sync.Mutex
	trades []models.ActiveTrade
}

func (s *recordingTradeSink) PublishTrade(_ context.Context, t models.ActiveTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, t)
	return nil
}

type fakeScorer struct {
	out models.EngineOutput
	err error
	req domsvc.ScoreRequest
}

func (f *fakeScorer) Score(_ context.Context, req domsvc.ScoreRequest) (models.EngineOutput, error) {
	f.req = req
	return f.out, f.err
}

var errBoom = errors.New("boom")

// waveSeries oscillates so pivots and legs are present.
func waveSeries(n int, step time.Duration) models.Series {
	s := make(models.Series, n)
	for i := range s {
		var base float64
		switch i % 8 {
		case 0, 1:
			base = 100 + float64(i%8)
		case 2, 3:
			base = 104 - float64(i%8-2)
		case 4, 5:
			base = 101 - float64(i%8-4)
		default:
			base = 99 + float64(i%8-6)
		}
		s[i] = models.Bar{
			Timestamp: t0.Add(time.Duration(i) * step),
			Open:      base,
			High:      base + 1,
			Low:       base - 1,
			Close:     base + 0.5,
			Volume:    10,
		}
	}
	return s
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
