package usecase

import (
	"bytes"
	"context"
	"testing"

	"FinSignal/internal/domain/models"
	"FinSignal/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestMultiAlertSinkJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	bad := &recordingSink{err: errBoom}
	var called int
	fn := FuncAlertSink(func(context.Context, models.Alert) error {
		called++
		return nil
	})

	err := MultiAlertSink{ok, bad, nil, fn}.Emit(context.Background(), models.Alert{Symbol: "X"})
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, ok.alerts, 1)
	assert.Equal(t, 1, called)
}

func TestLogAlertSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogAlertSink(logger.NewWriter(&buf, zerolog.InfoLevel))
	err := s.Emit(context.Background(), models.Alert{
		ID:      "id-1",
		Symbol:  "BTCUSDT",
		Signals: []models.SignalTag{models.TagTrendUp, models.TagBullishReversal},
	})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"signals":"trend_up,bullish_reversal"`)
	assert.Contains(t, buf.String(), `"symbol":"BTCUSDT"`)
}
