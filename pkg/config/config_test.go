package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
environment: test
monitor:
  symbols: [BTCUSDT]
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT"}, c.Monitor.Symbols)
	assert.Equal(t, []string{"1h", "4h", "1d"}, c.Monitor.Timeframes)
	assert.Equal(t, 5*time.Minute, c.Monitor.Interval)
	assert.Equal(t, 2, c.Monitor.Quorum)
	assert.True(t, c.Monitor.FullAnalysis)
	assert.Equal(t, 5.0, c.Analysis.ZThreshold)
	assert.Equal(t, 5, c.Analysis.Chart.Distance)
	assert.Equal(t, 0.02, c.Analysis.Chart.Threshold)
	assert.Equal(t, 3, c.Analysis.Pivot.Left)
	assert.Equal(t, 20, c.Analysis.DivergenceWindow)
	assert.Equal(t, 3.0, c.Analysis.Whale.VolumeMultiple)
	assert.True(t, c.Analysis.Whale.RequireReversal)
	assert.Equal(t, 0.5, c.Signal.WeightAI)
	assert.Equal(t, "csv", c.Source.Name)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: prod
monitor:
  symbols: [ETHUSDT, BTCUSDT]
  timeframes: [15m]
  full_analysis: false
analysis:
  whale:
    volume_multiple: 4.5
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"15m"}, c.Monitor.Timeframes)
	assert.False(t, c.Monitor.FullAnalysis)
	assert.Equal(t, 4.5, c.Analysis.Whale.VolumeMultiple)
	assert.Equal(t, 10, c.Analysis.Whale.SpoofWindow)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"no symbols":        "environment: test\n",
		"bad timeframe":     minimal + "  timeframes: [2h]\n",
		"kafka no brokers":  minimal + "kafka:\n  enabled: true\n",
		"finnhub no key":    minimal + "finnhub:\n  enabled: true\n  symbols: [AAPL]\n",
		"inverted adx band": minimal + "analysis:\n  trend:\n    trend_adx: 15\n",
		"zero weights":      minimal + "signal:\n  weight_ai: 0\n  weight_analytics: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	t.Setenv("SYMBOLS", "SOLUSDT, ADAUSDT")
	t.Setenv("BAR_SOURCE", "clickhouse")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOLUSDT", "ADAUSDT"}, c.Monitor.Symbols)
	assert.Equal(t, "clickhouse", c.Source.Name)
	assert.Equal(t, "debug", c.Log.Level)
}
