package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/preprocess"
	"FinSignal/pkg/logger"
	"FinSignal/pkg/util"
)

// CSVSource reads <dir>/<SYMBOL>.csv files with a header row naming at least
// timestamp, open, high, low, close and volume. Files may be at any
// resolution finer than the requested timeframe.
type CSVSource struct {
	dir        string
	zThreshold float64
	l          *logger.Logger
}

// NewCSVSource builds a CSV source rooted at dir.
func NewCSVSource(dir string, zThreshold float64, l *logger.Logger) *CSVSource {
	if l == nil {
		l = logger.Nop()
	}
	return &CSVSource{dir: dir, zThreshold: zThreshold, l: l}
}

func (s *CSVSource) Name() string { return SourceCSV }

func (s *CSVSource) Capability() domrepo.Capability { return domrepo.Implemented }

// FetchBars loads, cleans and resamples the symbol's file and returns the
// latest limit bars.
func (s *CSVSource) FetchBars(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) (models.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, util.NormalizeSymbol(symbol)+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := ReadRawBars(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	series, err := preprocess.Prepare(raw, preprocess.Config{ZThreshold: s.zThreshold, Granularity: tf.Duration()})
	if err != nil {
		return nil, err
	}
	s.l.Debug("csv bars loaded",
		logger.String("symbol", symbol),
		logger.String("tf", string(tf)),
		logger.Int("rows", len(raw)),
		logger.Int("bars", len(series)),
	)
	return tail(series, limit), nil
}

// ReadRawBars parses CSV rows. Columns are located by header name, so their
// order is free; absent columns stay nil and surface later as DataError.
// Timestamps accept RFC3339, unix seconds or unix milliseconds.
func ReadRawBars(r io.Reader) ([]models.RawBar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, models.NewDataError("", "empty csv")
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var out []models.RawBar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		var rb models.RawBar
		if i, ok := idx["timestamp"]; ok && i < len(rec) {
			ts, ok := util.ParseTime(rec[i])
			if !ok {
				return nil, models.NewDataError("timestamp", fmt.Sprintf("line %d: cannot parse %q", line, rec[i]))
			}
			sec := ts.Unix()
			rb.Timestamp = &sec
		}
		for _, c := range []struct {
			name string
			dst  **float64
		}{
			{"open", &rb.Open}, {"high", &rb.High}, {"low", &rb.Low}, {"close", &rb.Close}, {"volume", &rb.Volume},
		} {
			i, ok := idx[c.name]
			if !ok || i >= len(rec) {
				continue
			}
			v, err := util.ParseFloat(rec[i])
			if err != nil {
				return nil, models.NewDataError(c.name, fmt.Sprintf("line %d: %v", line, err))
			}
			*c.dst = &v
		}
		out = append(out, rb)
	}
	return out, nil
}

var _ domrepo.BarSource = (*CSVSource)(nil)
