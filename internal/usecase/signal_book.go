package usecase

import (
	"sort"
	"sync"

	"FinSignal/internal/domain/models"
)

// SignalBook keeps the latest fused signal per symbol.
type SignalBook struct {
	mu      sync.RWMutex
	signals map[string]models.StandardSignal
}

func NewSignalBook() *SignalBook {
	return &SignalBook{signals: make(map[string]models.StandardSignal)}
}

func (b *SignalBook) Put(s models.StandardSignal) {
	b.mu.Lock()
	b.signals[s.Symbol] = s.Clone()
	b.mu.Unlock()
}

func (b *SignalBook) Get(symbol string) (models.StandardSignal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.signals[symbol]
	if !ok {
		return models.StandardSignal{}, false
	}
	return s.Clone(), true
}

// All returns every signal ordered by symbol.
func (b *SignalBook) All() []models.StandardSignal {
	b.mu.RLock()
	out := make([]models.StandardSignal, 0, len(b.signals))
	for _, s := range b.signals {
		out = append(out, s.Clone())
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
