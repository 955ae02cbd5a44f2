package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/model"
)

func writePortfolio(t *testing.T, p *model.Portfolio) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.json")
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewManagerMissingFile(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Loaded() {
		t.Error("missing file should mean no portfolio")
	}
	if m.WithLivePrices(cache.New()) != nil {
		t.Error("unsynced portfolio should enrich to nil")
	}
}

func TestWithLivePrices(t *testing.T) {
	path := writePortfolio(t, &model.Portfolio{
		Source: "groww",
		Holdings: []model.Holding{
			{Symbol: "TCS", Quantity: 10, AvgPrice: 3800, Invested: 38000},
			{Symbol: "UNLISTED", Quantity: 5, AvgPrice: 100, Invested: 500},
		},
	})
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	st := cache.New()
	st.SetMarketData(map[string]model.Quote{
		"TCS.NS": {Symbol: "TCS.NS", Price: 4100},
	}, nil, nil, nil)

	p := m.WithLivePrices(st)
	if p == nil {
		t.Fatal("expected enriched portfolio")
	}

	tcs := p.Holdings[0]
	if tcs.LTP != 4100 {
		t.Errorf("ltp = %v", tcs.LTP)
	}
	if tcs.CurrentValue != 41000 {
		t.Errorf("currentValue = %v", tcs.CurrentValue)
	}
	if tcs.PnL != 3000 {
		t.Errorf("pnl = %v", tcs.PnL)
	}
	if tcs.PnLPercent != 7.89 {
		t.Errorf("pnlPercent = %v", tcs.PnLPercent)
	}

	// No cached quote: zeros, never stale numbers.
	un := p.Holdings[1]
	if un.LTP != 0 || un.CurrentValue != 0 || un.PnL != 0 || un.PnLPercent != 0 {
		t.Errorf("unpriced holding should be zeroed: %+v", un)
	}

	if p.TotalInvested != 38500 {
		t.Errorf("totalInvested = %v", p.TotalInvested)
	}
	if p.TotalCurrent != 41000 {
		t.Errorf("totalCurrent = %v", p.TotalCurrent)
	}
	if p.TotalPnL != 2500 {
		t.Errorf("totalPnl = %v", p.TotalPnL)
	}
	if p.TotalPnLPercent != 6.49 {
		t.Errorf("totalPnlPercent = %v", p.TotalPnLPercent)
	}
}

func TestWithLivePricesDoesNotMutateStored(t *testing.T) {
	path := writePortfolio(t, &model.Portfolio{
		Source:   "groww",
		Holdings: []model.Holding{{Symbol: "TCS", Quantity: 10, Invested: 38000}},
	})
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	st := cache.New()
	st.SetMarketData(map[string]model.Quote{
		"TCS.NS": {Symbol: "TCS.NS", Price: 4100},
	}, nil, nil, nil)

	m.WithLivePrices(st)

	m.mu.Lock()
	stored := m.portfolio.Holdings[0]
	m.mu.Unlock()
	if stored.LTP != 0 {
		t.Error("enrichment mutated the stored holdings")
	}
}
