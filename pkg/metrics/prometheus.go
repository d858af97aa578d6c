package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses     *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
	alertsTotal  *prometheus.CounterVec
	alertTags    *prometheus.HistogramVec
	tradesClosed *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the process-wide recorder registered on the default registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegisterer(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegisterer builds a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		analyses: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_timeframe_analysis_seconds",
				Help:    "Duration of one (symbol, timeframe) analysis including fetch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"symbol", "timeframe"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_alerts_total",
				Help: "Alerts emitted by the monitor",
			},
			[]string{"symbol"},
		),
		alertTags: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_alert_consensus_tags",
				Help:    "Number of consensus tags per alert",
				Buckets: []float64{0, 1, 2, 3, 5, 8},
			},
			[]string{"symbol"},
		),
		tradesClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_trades_closed_total",
				Help: "Trades closed by result",
			},
			[]string{"symbol", "result"},
		),
		lastPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsignal_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(r.analyses, r.errorsTotal, r.alertsTotal, r.alertTags, r.tradesClosed, r.lastPrice, r.latency)
	return r
}

// RecordAnalysis records the duration of one timeframe analysis.
func (r *Recorder) RecordAnalysis(symbol, tf string, seconds float64) {
	r.analyses.WithLabelValues(symbol, tf).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAlert records an emitted alert and its consensus size.
func (r *Recorder) RecordAlert(symbol string, tags int) {
	r.alertsTotal.WithLabelValues(symbol).Inc()
	r.alertTags.WithLabelValues(symbol).Observe(float64(tags))
}

// RecordTradeClosed counts closed trades by result.
func (r *Recorder) RecordTradeClosed(symbol, result string) {
	r.tradesClosed.WithLabelValues(symbol, result).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
