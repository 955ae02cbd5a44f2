// Package aggregator runs the refresh pipeline: baseline fan-out, brokerage
// overlays, cross-verification, saved-close override, then one cache write.
package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/closes"
	"MarketTerminal/internal/market"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/recorder"
	"MarketTerminal/internal/source"

	"golang.org/x/sync/errgroup"
)

// Aggregator merges quotes from all sources into the cache. Source
// priority, lowest to highest: baseline, Groww, Upstox; the verifier
// corrects indices and flagship stocks afterwards.
type Aggregator struct {
	Baseline source.Baseline
	Groww    source.Overlay
	Upstox   source.Overlay
	Verifier source.Verifier
	Closes   *closes.File
	Store    *cache.Store
	Recorder recorder.Recorder

	Workers      int
	BatchTimeout time.Duration
}

// New creates an Aggregator with the given sources. Groww, Upstox, and
// Verifier may be nil.
func New(baseline source.Baseline, groww, upstox source.Overlay, verifier source.Verifier, cf *closes.File, st *cache.Store, rec recorder.Recorder, workers int, batchTimeout time.Duration) *Aggregator {
	return &Aggregator{
		Baseline:     baseline,
		Groww:        groww,
		Upstox:       upstox,
		Verifier:     verifier,
		Closes:       cf,
		Store:        st,
		Recorder:     rec,
		Workers:      workers,
		BatchTimeout: batchTimeout,
	}
}

// Refresh runs one full aggregation cycle. A panic or total source
// failure leaves the previous cache contents untouched.
func (a *Aggregator) Refresh(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] refresh cycle panic: %v", r)
		}
	}()

	start := time.Now()
	log.Println("[INFO] refreshing market data")

	ctx, cancel := context.WithTimeout(ctx, a.BatchTimeout)
	defer cancel()

	quotes := a.fetchBaseline(ctx)

	if a.Groww != nil && a.Groww.Ready() {
		a.applyOverlay(ctx, a.Groww, quotes)
	}
	var upstoxIdx, upstoxStocks map[string]model.Quote
	if a.Upstox != nil && a.Upstox.Ready() {
		upstoxIdx, upstoxStocks = a.applyOverlay(ctx, a.Upstox, quotes)
	}

	a.verify(ctx, quotes, upstoxIdx, upstoxStocks)
	a.applySavedCloses(quotes)

	if len(quotes) == 0 {
		log.Println("[WARN] refresh produced no quotes, keeping previous cache")
		return
	}

	indices, commodities, livePrices, stockCount := partition(quotes)
	a.Store.SetMarketData(quotes, indices, commodities, livePrices)

	elapsed := time.Since(start)
	if err := a.Recorder.RecordCycle(&recorder.CycleRecord{
		Stocks:      stockCount,
		Indices:     len(indices),
		Commodities: len(commodities),
		ElapsedMS:   elapsed.Milliseconds(),
	}); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	log.Printf("[INFO] refreshed %d stocks, %d indices, %d commodities in %.1fs",
		stockCount, len(indices), len(commodities), elapsed.Seconds())
}

// fetchBaseline fans out over the full universe with a bounded worker
// pool. Per-symbol failures are logged and the symbol is omitted.
func (a *Aggregator) fetchBaseline(ctx context.Context) map[string]model.Quote {
	var mu sync.Mutex
	results := make(map[string]model.Quote)

	var g errgroup.Group
	g.SetLimit(a.Workers)
	for _, sym := range market.Universe() {
		sym := sym
		g.Go(func() error {
			q, err := a.Baseline.FetchQuote(ctx, sym)
			if err != nil {
				log.Printf("[WARN] baseline %s: %v", sym, err)
				return nil
			}
			mu.Lock()
			results[sym] = q
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return results
}

// applyOverlay merges an overlay's indices and stocks into quotes and
// returns what the overlay covered.
func (a *Aggregator) applyOverlay(ctx context.Context, ov source.Overlay, quotes map[string]model.Quote) (indices, stocks map[string]model.Quote) {
	indices, stocks, err := ov.FetchAll(ctx)
	if err != nil {
		log.Printf("[WARN] overlay %s: %v", ov.Name(), err)
		return nil, nil
	}
	for sym, q := range indices {
		quotes[sym] = mergeQuote(quotes[sym], q)
	}
	for sym, q := range stocks {
		quotes[sym] = mergeQuote(quotes[sym], q)
	}
	log.Printf("[INFO] %s overlay: %d indices, %d stocks", ov.Name(), len(indices), len(stocks))
	return indices, stocks
}

// mergeQuote applies an overlay quote on top of an existing one. The
// overlay's core fields win; fields the overlay does not carry survive
// from the existing quote.
func mergeQuote(existing, overlay model.Quote) model.Quote {
	merged := overlay
	if merged.ShortName == "" {
		merged.ShortName = existing.ShortName
	}
	if merged.FiftyTwoWeekHigh == 0 {
		merged.FiftyTwoWeekHigh = existing.FiftyTwoWeekHigh
	}
	if merged.FiftyTwoWeekLow == 0 {
		merged.FiftyTwoWeekLow = existing.FiftyTwoWeekLow
	}
	if merged.MarketCap == 0 {
		merged.MarketCap = existing.MarketCap
	}
	return merged
}

// verify cross-checks indices and flagship stocks against the scraper.
// Symbols Upstox already covered with a valid token are skipped.
func (a *Aggregator) verify(ctx context.Context, quotes map[string]model.Quote, upstoxIdx, upstoxStocks map[string]model.Quote) {
	if a.Verifier == nil {
		return
	}
	for _, sym := range market.IndexSymbols {
		if _, covered := upstoxIdx[sym]; covered {
			continue
		}
		a.verifySymbol(ctx, quotes, sym)
	}
	for _, sym := range market.FlagshipEquities {
		if _, covered := upstoxStocks[sym]; covered {
			continue
		}
		a.verifySymbol(ctx, quotes, sym)
	}
}

func (a *Aggregator) verifySymbol(ctx context.Context, quotes map[string]model.Quote, sym string) {
	scraped, err := a.Verifier.FetchQuote(ctx, sym)
	if err != nil {
		log.Printf("[WARN] verify %s: %v", sym, err)
		return
	}

	existing, ok := quotes[sym]
	if !ok {
		quotes[sym] = scraped
		return
	}

	if (existing.Change >= 0) != (scraped.Change >= 0) {
		// The sources disagree on direction. The scraper reads the
		// exchange page directly, so it wins wholesale.
		log.Printf("[WARN] direction mismatch for %s (%.2f vs %.2f), trusting %s",
			sym, existing.Change, scraped.Change, a.Verifier.Name())
		quotes[sym] = mergeQuote(existing, scraped)
		return
	}

	// Directions agree: still adopt the scraper's figures to correct
	// small drift from delayed baseline data.
	existing.Price = scraped.Price
	existing.PreviousClose = scraped.PreviousClose
	existing.Change = scraped.Change
	existing.ChangePercent = scraped.ChangePercent
	quotes[sym] = existing
}

// applySavedCloses recomputes change figures against the persisted
// official closes. Zero or missing values on either side leave the quote
// alone.
func (a *Aggregator) applySavedCloses(quotes map[string]model.Quote) {
	if a.Closes == nil {
		return
	}
	saved := a.Closes.Load()
	for sym, savedClose := range saved {
		q, ok := quotes[sym]
		if !ok || savedClose <= 0 || q.Price <= 0 {
			continue
		}
		q.PreviousClose = model.Round2(savedClose)
		q.Change = model.Round2(q.Price - savedClose)
		q.ChangePercent = model.Round2(q.Change / savedClose * 100)
		quotes[sym] = q
	}
}

// partition derives the index and commodity views and the live-price side
// channel from the merged quote map. The quote map itself keeps every
// symbol so lookups by raw symbol keep working.
func partition(quotes map[string]model.Quote) (map[string]model.IndexSnapshot, map[string]model.CommoditySnapshot, map[string]float64, int) {
	indices := make(map[string]model.IndexSnapshot)
	commodities := make(map[string]model.CommoditySnapshot)
	livePrices := make(map[string]float64, len(quotes))
	stockCount := 0

	for sym, q := range quotes {
		livePrices[sym] = q.Price
		if name, ok := market.IndexNameFor(sym); ok {
			indices[name] = model.IndexSnapshot{
				Value:         q.Price,
				PreviousClose: q.PreviousClose,
				Change:        q.Change,
				ChangePercent: q.ChangePercent,
			}
			continue
		}
		if display, ok := market.CommoditySymbols[sym]; ok {
			commodities[sym] = model.CommoditySnapshot{
				Name:          display,
				Value:         q.Price,
				Change:        q.Change,
				ChangePercent: q.ChangePercent,
			}
			continue
		}
		stockCount++
	}
	return indices, commodities, livePrices, stockCount
}
