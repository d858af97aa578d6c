package preprocess

import (
	"errors"
	"testing"
	"time"

	"FinSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(minute int, o, h, l, c, v float64) models.Bar {
	return models.Bar{Timestamp: t0.Add(time.Duration(minute) * time.Minute), Open: o, High: h, Low: l, Close: c, Volume: v}
}

func flatSeries(n int) models.Series {
	s := make(models.Series, n)
	for i := range s {
		p := 100 + float64(i%5)
		s[i] = bar(i, p, p+1, p-1, p, 10+float64(i%3))
	}
	return s
}

func TestNormalizeMissingColumn(t *testing.T) {
	ts := int64(1700000000)
	v := 1.0
	_, err := Normalize([]models.RawBar{{Timestamp: &ts, Open: &v, High: &v, Low: &v, Close: &v}})
	require.Error(t, err)

	var de *models.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "volume", de.Column)
	assert.ErrorIs(t, err, models.ErrData)
}

func TestNormalizeConvertsRows(t *testing.T) {
	ts := int64(1700000000)
	o, h, l, c, v := 1.0, 2.0, 0.5, 1.5, 10.0
	s, err := Normalize([]models.RawBar{{Timestamp: &ts, Open: &o, High: &h, Low: &l, Close: &c, Volume: &v}})
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, time.Unix(ts, 0).UTC(), s[0].Timestamp)
	assert.Equal(t, 1.5, s[0].Close)
}

func TestCleanDropsOutlierAndKeepsOrder(t *testing.T) {
	s := flatSeries(60)
	s[30].Volume = 100000
	in := s.Clone()

	out := Clean(s, DefaultZThreshold)

	assert.Len(t, out, 59)
	assert.Equal(t, in, s, "input must not be modified")
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i].Timestamp.After(out[i-1].Timestamp))
	}
	for _, b := range out {
		assert.NotEqual(t, 100000.0, b.Volume)
	}
}

func TestCleanDedupesAndSorts(t *testing.T) {
	s := models.Series{bar(2, 1, 1, 1, 1, 1), bar(0, 1, 1, 1, 1, 1), bar(2, 9, 9, 9, 9, 9), bar(1, 1, 1, 1, 1, 1)}
	out := Clean(s, DefaultZThreshold)

	require.Len(t, out, 3)
	assert.Equal(t, t0, out[0].Timestamp)
	assert.Equal(t, t0.Add(2*time.Minute), out[2].Timestamp)
	assert.Equal(t, 1.0, out[2].Open, "first occurrence wins")
}

func TestCleanNeverGrows(t *testing.T) {
	for n := 0; n < 40; n += 7 {
		s := flatSeries(n)
		assert.LessOrEqual(t, len(Clean(s, 1.0)), n)
	}
}

func TestCleanConstantColumnKeepsRows(t *testing.T) {
	s := models.Series{bar(0, 5, 5, 5, 5, 1), bar(1, 5, 5, 5, 5, 1), bar(2, 5, 5, 5, 5, 1)}
	assert.Len(t, Clean(s, DefaultZThreshold), 3)
}

func TestResampleAggregates(t *testing.T) {
	s := models.Series{
		bar(0, 10, 12, 9, 11, 1),
		bar(1, 11, 15, 10, 14, 2),
		bar(2, 14, 14, 8, 9, 3),
		bar(5, 9, 10, 9, 10, 4),
		bar(7, 10, 11, 10, 11, 0),
		bar(12, 11, 11, 11, 11, 0),
	}
	out, err := Resample(s, 5*time.Minute)
	require.NoError(t, err)

	require.Len(t, out, 2, "the zero-volume bucket at 10m is dropped")
	assert.Equal(t, models.Bar{Timestamp: t0, Open: 10, High: 15, Low: 8, Close: 9, Volume: 6}, out[0])
	assert.Equal(t, models.Bar{Timestamp: t0.Add(5 * time.Minute), Open: 9, High: 11, Low: 9, Close: 11, Volume: 4}, out[1])
}

func TestResampleSkipsEmptyBuckets(t *testing.T) {
	s := models.Series{bar(0, 1, 1, 1, 1, 1), bar(60, 2, 2, 2, 2, 1)}
	out, err := Resample(s, 5*time.Minute)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestResampleInvalidGranularity(t *testing.T) {
	_, err := Resample(flatSeries(3), 0)
	assert.ErrorIs(t, err, models.ErrData)
}

func TestPrepare(t *testing.T) {
	raw := make([]models.RawBar, 0, 10)
	for i := 0; i < 10; i++ {
		ts := t0.Add(time.Duration(i) * time.Minute).Unix()
		p, v := 100.0+float64(i), 1.0
		raw = append(raw, models.RawBar{Timestamp: &ts, Open: &p, High: &p, Low: &p, Close: &p, Volume: &v})
	}
	out, err := Prepare(raw, Config{ZThreshold: 5, Granularity: 5 * time.Minute})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 5.0, out[0].Volume)
	assert.Equal(t, 104.0, out[0].Close)
}
