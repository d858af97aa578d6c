package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounters(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordError("fetch")
	r.RecordError("fetch")
	r.RecordTradeClosed("BTCUSDT", "target_1")
	r.RecordAlert("BTCUSDT", 3)
	r.RecordLastPrice("BTCUSDT", 64000)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tradesClosed.WithLabelValues("BTCUSDT", "target_1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.alertsTotal.WithLabelValues("BTCUSDT")))
	assert.Equal(t, 64000.0, testutil.ToFloat64(r.lastPrice.WithLabelValues("BTCUSDT")))
}

func TestNewIsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}
