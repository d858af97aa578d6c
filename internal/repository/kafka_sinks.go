package repository

import (
	"context"
	"fmt"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

// Publisher is the producer surface the sinks use; *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaAlertSink publishes monitor alerts keyed by symbol.
type KafkaAlertSink struct {
	producer Publisher
	topic    string
}

// NewKafkaAlertSink creates the alert sink.
func NewKafkaAlertSink(producer Publisher, topic string) *KafkaAlertSink {
	return &KafkaAlertSink{producer: producer, topic: topic}
}

func (s *KafkaAlertSink) Emit(ctx context.Context, a models.Alert) error {
	if err := s.producer.Publish(ctx, s.topic, []byte(a.Symbol), a); err != nil {
		return fmt.Errorf("publish alert %s: %w", a.ID, err)
	}
	return nil
}

// TradeEvent is the message written for every trade state change.
type TradeEvent struct {
	Event string             `json:"event"`
	Time  time.Time          `json:"time"`
	Trade models.ActiveTrade `json:"trade"`
}

// KafkaTradeSink publishes trade state changes keyed by symbol.
type KafkaTradeSink struct {
	producer Publisher
	topic    string
	now      func() time.Time
}

// NewKafkaTradeSink creates the trade sink.
func NewKafkaTradeSink(producer Publisher, topic string) *KafkaTradeSink {
	return &KafkaTradeSink{producer: producer, topic: topic, now: time.Now}
}

// PublishTrade writes an "opened" or "closed" event depending on the trade status.
func (s *KafkaTradeSink) PublishTrade(ctx context.Context, t models.ActiveTrade) error {
	event := "opened"
	if t.Status == models.TradeClosed {
		event = "closed"
	}
	msg := TradeEvent{Event: event, Time: s.now().UTC(), Trade: t}
	if err := s.producer.Publish(ctx, s.topic, []byte(t.Symbol), msg); err != nil {
		return fmt.Errorf("publish trade %s: %w", t.TradeID, err)
	}
	return nil
}

var (
	_ domrepo.AlertSink      = (*KafkaAlertSink)(nil)
	_ domrepo.TradeEventSink = (*KafkaTradeSink)(nil)
)
