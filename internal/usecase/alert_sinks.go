package usecase

import (
	"context"
	"errors"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/pkg/logger"
)

// LogAlertSink writes alerts to the logger.
type LogAlertSink struct {
	log *logger.Logger
}

func NewLogAlertSink(l *logger.Logger) *LogAlertSink {
	if l == nil {
		l = logger.Nop()
	}
	return &LogAlertSink{log: l}
}

func (s *LogAlertSink) Emit(_ context.Context, a models.Alert) error {
	tags := make([]string, len(a.Signals))
	for i, t := range a.Signals {
		tags[i] = string(t)
	}
	s.log.Info("alert",
		logger.String("id", a.ID),
		logger.String("symbol", a.Symbol),
		logger.String("signals", strings.Join(tags, ",")),
		logger.Int("failures", len(a.Failures)),
	)
	return nil
}

// FuncAlertSink adapts a callback.
type FuncAlertSink func(ctx context.Context, a models.Alert) error

func (f FuncAlertSink) Emit(ctx context.Context, a models.Alert) error { return f(ctx, a) }

// MultiAlertSink emits to every sink and joins their errors.
type MultiAlertSink []domrepo.AlertSink

func (m MultiAlertSink) Emit(ctx context.Context, a models.Alert) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
