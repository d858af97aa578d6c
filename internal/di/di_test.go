package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"FinSignal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, symbol string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close,volume\n")
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := 100 + float64(i%10)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			t0.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), p, p+1, p-1, p+0.5, 10+i%3)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(b.String()), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Monitor.Symbols = []string{"BTCUSDT"}
	cfg.Monitor.Timeframes = []string{"1h", "4h"}
	cfg.Source.CSVDir = t.TempDir()
	return cfg
}

func TestInitializeAppRunsOnceFromCSV(t *testing.T) {
	cfg := testConfig(t)
	writeCSV(t, cfg.Source.CSVDir, "BTCUSDT", 400)

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.NoError(t, app.RunOnce(context.Background()))
}

func TestInitializeAppRejectsUnsupportedSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source.Name = "kucoin"
	_, _, err := InitializeApp(cfg)
	assert.Error(t, err)
}

func TestProvideModelScorerDisabledWithoutURL(t *testing.T) {
	cfg := testConfig(t)
	assert.Nil(t, ProvideModelScorer(cfg))
	cfg.Analytics.ModelURL = "http://localhost:9"
	assert.NotNil(t, ProvideModelScorer(cfg))
}

func TestProvideTradeSinkNilWithoutKafka(t *testing.T) {
	assert.Nil(t, ProvideTradeSink(testConfig(t), nil))
}
