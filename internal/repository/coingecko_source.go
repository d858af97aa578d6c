package repository

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/services/preprocess"
	xhttp "FinSignal/pkg/http"
	"FinSignal/pkg/logger"
)

// coinIDs maps common tickers to CoinGecko ids. Other symbols are looked up
// by their lower-cased base asset.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"AVAX": "avalanche-2",
}

// CoinGeckoSource fetches OHLC candles from the public CoinGecko API. The
// endpoint carries no volume, so every bar gets volume 1.
type CoinGeckoSource struct {
	baseURL string
	client  *xhttp.Client
	l       *logger.Logger
}

// NewCoinGeckoSource builds the source against baseURL (e.g. https://api.coingecko.com/api/v3).
func NewCoinGeckoSource(baseURL string, timeout time.Duration, l *logger.Logger) *CoinGeckoSource {
	if l == nil {
		l = logger.Nop()
	}
	return &CoinGeckoSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		l:       l,
	}
}

func (s *CoinGeckoSource) Name() string { return SourceCoinGecko }

func (s *CoinGeckoSource) Capability() domrepo.Capability { return domrepo.Implemented }

// FetchBars requests enough days to cover limit bars and resamples the reply to tf.
func (s *CoinGeckoSource) FetchBars(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) (models.Series, error) {
	id := coinID(symbol)
	var rows [][]float64
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/ohlc", s.baseURL, id),
		QueryParams: url.Values{
			"vs_currency": {"usd"},
			"days":        {fmt.Sprint(daysFor(tf, limit))},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("coingecko ohlc %s: %w", id, err)
	}

	raw := make([]models.RawBar, 0, len(rows))
	for _, r := range rows {
		if len(r) < 5 {
			return nil, models.NewDataError("", fmt.Sprintf("coingecko row has %d fields, want 5", len(r)))
		}
		ts := int64(r[0]) / 1000
		o, h, lo, c, v := r[1], r[2], r[3], r[4], 1.0
		raw = append(raw, models.RawBar{Timestamp: &ts, Open: &o, High: &h, Low: &lo, Close: &c, Volume: &v})
	}
	series, err := preprocess.Prepare(raw, preprocess.Config{ZThreshold: preprocess.DefaultZThreshold, Granularity: tf.Duration()})
	if err != nil {
		return nil, err
	}
	s.l.Debug("coingecko bars loaded",
		logger.String("symbol", symbol),
		logger.String("id", id),
		logger.Int("bars", len(series)),
	)
	return tail(series, limit), nil
}

func coinID(symbol string) string {
	base := strings.ToUpper(strings.TrimSpace(symbol))
	for _, quote := range []string{"USDT", "USDC", "USD"} {
		if strings.HasSuffix(base, quote) && len(base) > len(quote) {
			base = strings.TrimSuffix(base, quote)
			break
		}
	}
	if id, ok := coinIDs[base]; ok {
		return id
	}
	return strings.ToLower(base)
}

// daysFor returns the CoinGecko "days" value covering limit bars of tf.
// The API accepts 1, 7, 14, 30, 90, 180 and 365.
func daysFor(tf domrepo.Timeframe, limit int) int {
	need := math.Ceil(float64(limit) * tf.Duration().Hours() / 24)
	for _, d := range []int{1, 7, 14, 30, 90, 180} {
		if need <= float64(d) {
			return d
		}
	}
	return 365
}

var _ domrepo.BarSource = (*CoinGeckoSource)(nil)
