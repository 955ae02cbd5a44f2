// Package portfolio caches brokerage holdings in a local JSON file and
// enriches them with live prices at read time.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/source"
)

// Manager guards the locally cached portfolio and its file.
type Manager struct {
	mu        sync.Mutex
	filePath  string
	portfolio *model.Portfolio
}

// NewManager loads the portfolio file if it exists. A missing file means
// no portfolio has been synced yet, which is not an error.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{filePath: filePath}
	p, err := loadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	m.portfolio = p
	return m, nil
}

func loadFile(filePath string) (*model.Portfolio, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var p model.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func saveFile(filePath string, p *model.Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// Loaded reports whether a synced portfolio is available.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portfolio != nil
}

// SyncFromGroww replaces the cached portfolio with the account's current
// holdings and persists it.
func (m *Manager) SyncFromGroww(ctx context.Context, g *source.Groww) (*model.Portfolio, error) {
	holdings, err := g.FetchHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch holdings: %w", err)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("no holdings in account")
	}

	var totalInvested float64
	for _, h := range holdings {
		totalInvested += h.Invested
	}
	p := &model.Portfolio{
		Source:        "groww",
		LastUpdated:   time.Now(),
		TotalInvested: model.Round2(totalInvested),
		Holdings:      holdings,
	}

	m.mu.Lock()
	m.portfolio = p
	err = saveFile(m.filePath, p)
	m.mu.Unlock()
	if err != nil {
		log.Printf("[WARN] save portfolio: %v", err)
	}

	log.Printf("[INFO] imported %d holdings from groww (%.2f invested)", len(holdings), totalInvested)
	return p, nil
}

// WithLivePrices returns a copy of the portfolio with LTP, current value,
// and PnL joined in from the quote cache. Holdings without a cached quote
// show zeros rather than stale figures. Returns nil when nothing is synced.
func (m *Manager) WithLivePrices(st *cache.Store) *model.Portfolio {
	m.mu.Lock()
	stored := m.portfolio
	m.mu.Unlock()
	if stored == nil {
		return nil
	}

	snap := st.Snapshot()

	out := model.Portfolio{
		Source:      stored.Source,
		LastUpdated: stored.LastUpdated,
		Holdings:    make([]model.Holding, len(stored.Holdings)),
	}
	var totalInvested, totalCurrent float64
	for i, h := range stored.Holdings {
		// Cache keys quotes by Yahoo symbol; NSE holdings map to SYMBOL.NS.
		if q, ok := snap.Quotes[h.Symbol+".NS"]; ok && q.Price > 0 {
			h.LTP = q.Price
			h.CurrentValue = model.Round2(q.Price * h.Quantity)
			h.PnL = model.Round2(h.CurrentValue - h.Invested)
			if h.Invested > 0 {
				h.PnLPercent = model.Round2(h.PnL / h.Invested * 100)
			} else {
				h.PnLPercent = 0
			}
		} else {
			h.LTP = 0
			h.CurrentValue = 0
			h.PnL = 0
			h.PnLPercent = 0
		}
		totalInvested += h.Invested
		totalCurrent += h.CurrentValue
		out.Holdings[i] = h
	}

	out.TotalInvested = model.Round2(totalInvested)
	out.TotalCurrent = model.Round2(totalCurrent)
	out.TotalPnL = model.Round2(totalCurrent - totalInvested)
	if totalInvested > 0 {
		out.TotalPnLPercent = model.Round2(out.TotalPnL / totalInvested * 100)
	}
	return &out
}
