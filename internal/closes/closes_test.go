package closes

import (
	"os"
	"path/filepath"
	"testing"

	"MarketTerminal/internal/cache"
)

func tempFile(t *testing.T) *File {
	t.Helper()
	return NewFile(filepath.Join(t.TempDir(), "saved_closes.json"))
}

func TestLoadMissingFile(t *testing.T) {
	f := tempFile(t)
	if got := f.Load(); len(got) != 0 {
		t.Errorf("missing file should load empty, got %v", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	f := tempFile(t)
	if err := os.WriteFile(f.Path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := f.Load(); len(got) != 0 {
		t.Errorf("corrupt file should load empty, got %v", got)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	f := tempFile(t)
	prices := map[string]float64{"TCS.NS": 4100.50, "^NSEI": 24500.75}
	if err := f.Save(prices); err != nil {
		t.Fatal(err)
	}

	got := f.Load()
	if got["TCS.NS"] != 4100.50 || got["^NSEI"] != 24500.75 {
		t.Errorf("roundtrip mismatch: %v", got)
	}
}

func TestSaveMarketCloseSkipsEmptyCache(t *testing.T) {
	f := tempFile(t)
	if err := f.Save(map[string]float64{"TCS.NS": 4000}); err != nil {
		t.Fatal(err)
	}

	saved, err := SaveMarketClose(f, cache.New())
	if err != nil {
		t.Fatal(err)
	}
	if saved != 0 {
		t.Errorf("empty cache should save nothing, saved %d", saved)
	}
	if got := f.Load()["TCS.NS"]; got != 4000 {
		t.Errorf("previous day's file overwritten: %v", got)
	}
}

func TestSaveMarketClose(t *testing.T) {
	f := tempFile(t)
	st := cache.New()
	st.SetMarketData(nil, nil, nil, map[string]float64{"TCS.NS": 4100, "^NSEI": 24500})

	saved, err := SaveMarketClose(f, st)
	if err != nil {
		t.Fatal(err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}
	if got := f.Load()["^NSEI"]; got != 24500 {
		t.Errorf("nifty close = %v", got)
	}
}

func TestPrefillClassifiesSymbols(t *testing.T) {
	f := tempFile(t)
	if err := f.Save(map[string]float64{
		"TCS.NS": 4100,
		"^NSEI":  24500,
		"GC=F":   2400,
		"BAD.NS": 0,
	}); err != nil {
		t.Fatal(err)
	}

	st := cache.New()
	n := Prefill(f, st)
	if n != 3 {
		t.Errorf("prefilled %d symbols, want 3", n)
	}

	snap := st.Snapshot()
	q, ok := snap.Quotes["TCS.NS"]
	if !ok {
		t.Fatal("TCS.NS not prefilled")
	}
	if q.Price != 4100 || q.PreviousClose != 4100 || q.Change != 0 || q.ChangePercent != 0 {
		t.Errorf("prefilled quote should show zero change: %+v", q)
	}

	if idx, ok := snap.Indices["nifty"]; !ok || idx.Value != 24500 || idx.Change != 0 {
		t.Errorf("nifty prefill: %+v", idx)
	}
	if cmd, ok := snap.Commodities["GC=F"]; !ok || cmd.Name != "GOLD" || cmd.Value != 2400 {
		t.Errorf("gold prefill: %+v", cmd)
	}
	if _, ok := snap.Quotes["BAD.NS"]; ok {
		t.Error("zero-price symbol should be skipped")
	}

	// Prefill must not arm the close save with stale prices.
	if live := st.LivePrices(); len(live) != 0 {
		t.Errorf("prefill populated live prices: %v", live)
	}
}

func TestPrefillEmptyFileIsNoop(t *testing.T) {
	f := tempFile(t)
	st := cache.New()
	if n := Prefill(f, st); n != 0 {
		t.Errorf("prefilled %d from missing file", n)
	}
	if !st.Snapshot().LastStockUpdate.IsZero() {
		t.Error("prefill with no data should not touch the cache")
	}
}
