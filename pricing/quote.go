// Package pricing provides the display-only market price ticker. Nothing
// here reads or writes the ledger.
package pricing

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Quote is one observation of an instrument's price.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Time          time.Time `json:"time"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
}

// Up reports whether the quote moved up or stayed flat.
func (q Quote) Up() bool {
	return q.Change >= 0
}

type Source interface {
	Quote(ctx context.Context) (Quote, error)
}

// MockSource produces random quotes around a base price:
// price = base + (r-0.5)*jitter, change = (r-0.5)*20, change% = (r-0.5)*2.
type MockSource struct {
	Symbol string
	Base   float64
	Jitter float64

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewMockSource(symbol string, base, jitter float64, seed int64) *MockSource {
	return &MockSource{
		Symbol: symbol,
		Base:   base,
		Jitter: jitter,
		rnd:    rand.New(rand.NewSource(seed)),
		now:    time.Now,
	}
}

func (m *MockSource) Quote(ctx context.Context) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}

	m.mu.Lock()
	a, b, c := m.rnd.Float64(), m.rnd.Float64(), m.rnd.Float64()
	m.mu.Unlock()

	return Quote{
		Symbol:        m.Symbol,
		Time:          m.now(),
		Price:         m.Base + (a-0.5)*m.Jitter,
		Change:        (b - 0.5) * 20,
		ChangePercent: (c - 0.5) * 2,
	}, nil
}
