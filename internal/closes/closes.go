// Package closes persists official closing prices to a JSON file so the
// next trading day's change figures are computed against a real close.
package closes

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"
)

// Snapshot is the on-disk file format.
type Snapshot struct {
	Date   string             `json:"date"`
	Time   string             `json:"time"`
	Prices map[string]float64 `json:"prices"`
}

// File wraps the saved-closes JSON file.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the saved closes. A missing or unreadable file yields an
// empty map; the caller never has to handle an error.
func (f *File) Load() map[string]float64 {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] read saved closes: %v", err)
		}
		return map[string]float64{}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[WARN] parse saved closes: %v", err)
		return map[string]float64{}
	}
	if snap.Prices == nil {
		return map[string]float64{}
	}
	return snap.Prices
}

// Save overwrites the file with the given prices, stamped with today's
// date and time.
func (f *File) Save(prices map[string]float64) error {
	now := time.Now()
	snap := Snapshot{
		Date:   now.Format("2006-01-02"),
		Time:   now.Format("15:04:05"),
		Prices: prices,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0644)
}

// SaveMarketClose persists the cache's live prices as today's closes.
// An empty live-price set is skipped so the previous day's file survives
// a save that fires before any refresh has run.
func SaveMarketClose(f *File, st *cache.Store) (int, error) {
	prices := st.LivePrices()
	if len(prices) == 0 {
		log.Println("[WARN] no live prices in cache, skipping close save")
		return 0, nil
	}
	if err := f.Save(prices); err != nil {
		return 0, err
	}
	log.Printf("[INFO] saved %d closing prices to %s", len(prices), f.Path)
	return len(prices), nil
}

// Prefill seeds the cache from saved closes so the API serves data
// immediately after startup, before the first live refresh completes.
// Seeded entries show zero change with previous close equal to price.
func Prefill(f *File, st *cache.Store) int {
	saved := f.Load()
	if len(saved) == 0 {
		return 0
	}

	quotes := make(map[string]model.Quote)
	indices := make(map[string]model.IndexSnapshot)
	commodities := make(map[string]model.CommoditySnapshot)

	for sym, price := range saved {
		if price <= 0 {
			continue
		}
		quotes[sym] = model.Quote{
			Symbol:        sym,
			ShortName:     market.ShortName(sym),
			Price:         price,
			PreviousClose: price,
		}
		if name, ok := market.IndexNameFor(sym); ok {
			indices[name] = model.IndexSnapshot{Value: price, PreviousClose: price}
		} else if display, ok := market.CommoditySymbols[sym]; ok {
			commodities[sym] = model.CommoditySnapshot{Name: display, Value: price}
		}
	}

	// Live prices stay empty: a close save must never re-persist
	// yesterday's closes as today's.
	st.SetMarketData(quotes, indices, commodities, nil)
	log.Printf("[INFO] prefilled cache with %d saved closes", len(quotes))
	return len(quotes)
}
