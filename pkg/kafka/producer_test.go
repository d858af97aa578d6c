package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip")
	fixed := time.Unix(100, 0)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(context.Background(), "alerts", []byte("BTC"), map[string]int{"a": 1}))
	require.NoError(t, p.PublishBatch(context.Background(), "alerts", []Message{
		{Key: []byte("ETH"), Value: "raw"},
		{Key: []byte("SOL"), Value: []byte("bytes")},
	}))

	require.Len(t, w.msgs, 3)
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "alerts", w.msgs[0].Topic)
	assert.Equal(t, fixed, w.msgs[0].Time)
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, "bytes", string(w.msgs[2].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("boom")
	p := newProducer(&fakeWriter{err: boom}, "gzip")
	err := p.Publish(context.Background(), "trades", nil, "x")
	assert.ErrorIs(t, err, boom)
}

func TestPublishRejectsUnencodable(t *testing.T) {
	p := newProducer(&fakeWriter{}, "gzip")
	assert.Error(t, p.Publish(context.Background(), "t", nil, make(chan int)))
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestSettingsOptions(t *testing.T) {
	cfg := &ProducerConfig{}
	for _, opt := range (Settings{Brokers: []string{"k:9092"}, Compression: "zstd", MaxAttempts: 5, Linger: time.Second}).Options() {
		opt(cfg)
	}
	assert.Equal(t, []string{"k:9092"}, cfg.Brokers)
	assert.True(t, cfg.HashByKey)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.BatchTimeout)
	assert.Zero(t, cfg.RequiredAcks)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
