package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
)

// Names of the bar sources the registry knows about.
const (
	SourceCSV           = "csv"
	SourceClickHouse    = "clickhouse"
	SourceCoinGecko     = "coingecko"
	SourceKuCoin        = "kucoin"
	SourceGateIO        = "gateio"
	SourceOKX           = "okx"
	SourceMEXC          = "mexc"
	SourceBitfinex      = "bitfinex"
	SourceCoinMarketCap = "coinmarketcap"
)

// SourceRegistry resolves a configured source name to a usable fetcher.
type SourceRegistry struct {
	mu      sync.RWMutex
	sources map[string]domrepo.BarSource
}

// NewSourceRegistry registers the given sources plus every known exchange
// that has no adapter yet.
func NewSourceRegistry(sources ...domrepo.BarSource) *SourceRegistry {
	r := &SourceRegistry{sources: make(map[string]domrepo.BarSource)}
	for _, s := range UnsupportedSources() {
		r.Register(s)
	}
	for _, s := range sources {
		if s != nil {
			r.Register(s)
		}
	}
	return r
}

// Register adds or replaces a source by name.
func (r *SourceRegistry) Register(s domrepo.BarSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[strings.ToLower(s.Name())] = s
}

// Fetcher returns the named source when it is implemented. Unknown and
// unsupported names are configuration errors.
func (r *SourceRegistry) Fetcher(name string) (domrepo.BarFetcher, error) {
	r.mu.RLock()
	s, ok := r.sources[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return nil, models.NewConfigurationError("source.name", fmt.Sprintf("unknown bar source %q", name))
	}
	if s.Capability() != domrepo.Implemented {
		return nil, models.NewConfigurationError("source.name", fmt.Sprintf("bar source %q is not supported", name))
	}
	return s, nil
}

// Names maps every registered source to its capability.
func (r *SourceRegistry) Names() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.sources))
	for name, s := range r.sources {
		out[name] = s.Capability().String()
	}
	return out
}

// Implemented returns the names of usable sources in alphabetical order.
func (r *SourceRegistry) Implemented() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for name, s := range r.sources {
		if s.Capability() == domrepo.Implemented {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// unsupportedSource stands in for an exchange without an adapter.
type unsupportedSource struct {
	name string
}

func (s unsupportedSource) Name() string { return s.name }

func (s unsupportedSource) Capability() domrepo.Capability { return domrepo.Unsupported }

func (s unsupportedSource) FetchBars(context.Context, string, domrepo.Timeframe, int) (models.Series, error) {
	return nil, models.NewConfigurationError("source.name", fmt.Sprintf("bar source %q is not supported", s.name))
}

// UnsupportedSources lists exchanges that are recognized but cannot fetch.
func UnsupportedSources() []domrepo.BarSource {
	names := []string{SourceKuCoin, SourceGateIO, SourceOKX, SourceMEXC, SourceBitfinex, SourceCoinMarketCap}
	out := make([]domrepo.BarSource, len(names))
	for i, n := range names {
		out[i] = unsupportedSource{name: n}
	}
	return out
}

// tail returns the last n bars, or all of them when n <= 0.
func tail(s models.Series, n int) models.Series {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
