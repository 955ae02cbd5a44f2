// Package cache holds the in-memory market snapshot shared between the
// refresh loops and the HTTP handlers.
package cache

import (
	"sync"
	"time"

	"MarketTerminal/internal/model"
)

// Snapshot is a consistent copy of the cached state. Mutating it does not
// affect the store.
type Snapshot struct {
	Quotes          map[string]model.Quote
	Indices         map[string]model.IndexSnapshot
	Commodities     map[string]model.CommoditySnapshot
	News            []model.NewsArticle
	LastStockUpdate time.Time
	LastNewsUpdate  time.Time
}

// Store guards all cached market data behind a single mutex so readers
// never observe a half-applied refresh.
type Store struct {
	mu          sync.Mutex
	quotes      map[string]model.Quote
	indices     map[string]model.IndexSnapshot
	commodities map[string]model.CommoditySnapshot
	news        []model.NewsArticle
	livePrices  map[string]float64
	stockUpdate time.Time
	newsUpdate  time.Time
}

func New() *Store {
	return &Store{
		quotes:      make(map[string]model.Quote),
		indices:     make(map[string]model.IndexSnapshot),
		commodities: make(map[string]model.CommoditySnapshot),
		livePrices:  make(map[string]float64),
	}
}

// SetMarketData replaces quotes, indices, commodities, and live prices in
// one exclusive write and stamps the stock-update time.
func (s *Store) SetMarketData(quotes map[string]model.Quote, indices map[string]model.IndexSnapshot, commodities map[string]model.CommoditySnapshot, livePrices map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = copyQuotes(quotes)
	s.indices = copyIndices(indices)
	s.commodities = copyCommodities(commodities)
	s.livePrices = copyPrices(livePrices)
	s.stockUpdate = time.Now()
}

// SetNews replaces the news list and stamps the news-update time.
func (s *Store) SetNews(articles []model.NewsArticle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = append([]model.NewsArticle(nil), articles...)
	s.newsUpdate = time.Now()
}

// Snapshot returns a deep copy of the cached state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Quotes:          copyQuotes(s.quotes),
		Indices:         copyIndices(s.indices),
		Commodities:     copyCommodities(s.commodities),
		News:            append([]model.NewsArticle(nil), s.news...),
		LastStockUpdate: s.stockUpdate,
		LastNewsUpdate:  s.newsUpdate,
	}
}

// LivePrices returns a copy of the last-seen price per symbol, the side
// channel the market-close save reads.
func (s *Store) LivePrices() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPrices(s.livePrices)
}

func copyQuotes(in map[string]model.Quote) map[string]model.Quote {
	out := make(map[string]model.Quote, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyIndices(in map[string]model.IndexSnapshot) map[string]model.IndexSnapshot {
	out := make(map[string]model.IndexSnapshot, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyCommodities(in map[string]model.CommoditySnapshot) map[string]model.CommoditySnapshot {
	out := make(map[string]model.CommoditySnapshot, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyPrices(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
