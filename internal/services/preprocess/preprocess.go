// Package preprocess turns raw bar rows into clean, ordered series.
package preprocess

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FinSignal/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

// DefaultZThreshold is the |z| at or above which a value is treated as an outlier.
const DefaultZThreshold = 5.0

// Config controls Prepare.
type Config struct {
	ZThreshold  float64
	Granularity time.Duration // 0 keeps the input resolution
}

// column is one numeric field of a bar. Clean evaluates columns in this order
// and each pass only sees rows that survived the previous ones, so reordering
// changes which rows are dropped.
type column struct {
	name string
	get  func(models.Bar) float64
}

var cleanOrder = []column{
	{"open", func(b models.Bar) float64 { return b.Open }},
	{"high", func(b models.Bar) float64 { return b.High }},
	{"low", func(b models.Bar) float64 { return b.Low }},
	{"close", func(b models.Bar) float64 { return b.Close }},
	{"volume", func(b models.Bar) float64 { return b.Volume }},
}

// Normalize validates raw rows and converts them to bars. It fails with a
// DataError naming the first absent column.
func Normalize(raw []models.RawBar) (models.Series, error) {
	out := make(models.Series, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.Timestamp == nil:
			return nil, models.NewDataError("timestamp", fmt.Sprintf("missing in row %d", i))
		case r.Open == nil:
			return nil, models.NewDataError("open", fmt.Sprintf("missing in row %d", i))
		case r.High == nil:
			return nil, models.NewDataError("high", fmt.Sprintf("missing in row %d", i))
		case r.Low == nil:
			return nil, models.NewDataError("low", fmt.Sprintf("missing in row %d", i))
		case r.Close == nil:
			return nil, models.NewDataError("close", fmt.Sprintf("missing in row %d", i))
		case r.Volume == nil:
			return nil, models.NewDataError("volume", fmt.Sprintf("missing in row %d", i))
		case *r.Volume < 0:
			return nil, models.NewDataError("volume", fmt.Sprintf("negative in row %d", i))
		}
		out = append(out, models.Bar{
			Timestamp: time.Unix(*r.Timestamp, 0).UTC(),
			Open:      *r.Open,
			High:      *r.High,
			Low:       *r.Low,
			Close:     *r.Close,
			Volume:    *r.Volume,
		})
	}
	return out, nil
}

// Clean drops z-score outliers column by column, removes duplicate timestamps
// (first occurrence wins) and sorts ascending. The input is not modified.
func Clean(series models.Series, zThreshold float64) models.Series {
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}
	rows := series.Clone()
	for _, col := range cleanOrder {
		rows = dropOutliers(rows, col, zThreshold)
	}

	seen := make(map[int64]struct{}, len(rows))
	out := make(models.Series, 0, len(rows))
	for _, b := range rows {
		key := b.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func dropOutliers(rows models.Series, col column, threshold float64) models.Series {
	if len(rows) < 2 {
		return rows
	}
	vals := make([]float64, len(rows))
	for i, b := range rows {
		vals[i] = col.get(b)
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if std == 0 || math.IsNaN(std) {
		return rows
	}
	kept := rows[:0:0]
	for i, b := range rows {
		if math.Abs((vals[i]-mean)/std) >= threshold {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// Resample aggregates bars into epoch-aligned buckets of the given width.
// Buckets without observations are never produced and buckets whose summed
// volume is zero are dropped as data gaps.
func Resample(series models.Series, granularity time.Duration) (models.Series, error) {
	if granularity <= 0 {
		return nil, models.NewDataError("", fmt.Sprintf("invalid resample granularity %s", granularity))
	}
	if len(series) == 0 {
		return models.Series{}, nil
	}
	sorted := series.Clone()
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	width := granularity.Nanoseconds()
	out := make(models.Series, 0, len(sorted))
	var (
		cur    models.Bar
		bucket int64
		open   bool
	)
	flush := func() {
		if open && cur.Volume != 0 {
			out = append(out, cur)
		}
	}
	for _, b := range sorted {
		start := floorDiv(b.Timestamp.UnixNano(), width) * width
		if !open || start != bucket {
			flush()
			bucket = start
			open = true
			cur = models.Bar{
				Timestamp: time.Unix(0, start).UTC(),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			}
			continue
		}
		cur.High = math.Max(cur.High, b.High)
		cur.Low = math.Min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	flush()
	return out, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Prepare runs Normalize, Clean and, when a granularity is set, Resample.
func Prepare(raw []models.RawBar, cfg Config) (models.Series, error) {
	series, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	series = Clean(series, cfg.ZThreshold)
	if cfg.Granularity > 0 {
		return Resample(series, cfg.Granularity)
	}
	return series, nil
}
