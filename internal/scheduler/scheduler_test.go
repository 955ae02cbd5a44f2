package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/closes"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/recorder"
)

func TestIsMarketOpen(t *testing.T) {
	// 2026-08-31 is a Monday.
	day := func(wd time.Weekday) time.Time {
		return time.Date(2026, 8, 31+int(wd-time.Monday), 0, 0, 0, 0, time.Local)
	}
	at := func(wd time.Weekday, h, m, s int) time.Time {
		d := day(wd)
		return time.Date(d.Year(), d.Month(), d.Day(), h, m, s, 0, time.Local)
	}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday before open", at(time.Monday, 9, 14, 59), false},
		{"monday at open", at(time.Monday, 9, 15, 0), true},
		{"monday midday", at(time.Monday, 12, 0, 0), true},
		{"monday at close", at(time.Monday, 15, 30, 0), true},
		{"monday one second after close", at(time.Monday, 15, 30, 1), false},
		{"monday 15:30:59", at(time.Monday, 15, 30, 59), false},
		{"friday at close", at(time.Friday, 15, 30, 0), true},
		{"saturday midday", at(time.Saturday, 12, 0, 0), false},
		{"sunday midday", at(time.Sunday, 12, 0, 0), false},
		{"monday midnight", at(time.Monday, 0, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMarketOpen(tt.t); got != tt.want {
				t.Errorf("IsMarketOpen(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *cache.Store, *closes.File, *int) {
	t.Helper()
	store := cache.New()
	cf := closes.NewFile(filepath.Join(t.TempDir(), "saved_closes.json"))
	exits := 0

	s := NewScheduler(context.Background(), nil, nil, cf, store, recorder.NewNoopRecorder())
	s.Now = func() time.Time { return now }
	s.Exit = func(int) { exits++ }
	return s, store, cf, &exits
}

func TestCloseSaveFiresOnceAtSaveTime(t *testing.T) {
	// Tuesday 15:31:10
	now := time.Date(2026, 9, 1, 15, 31, 10, 0, time.Local)
	s, store, cf, exits := newTestScheduler(t, now)

	store.SetMarketData(map[string]model.Quote{
		"TCS.NS": {Symbol: "TCS.NS", Price: 4100.50},
	}, nil, nil, map[string]float64{"TCS.NS": 4100.50})

	s.closeSaveTick()
	if *exits != 1 {
		t.Fatalf("expected 1 exit after save, got %d", *exits)
	}
	saved := cf.Load()
	if saved["TCS.NS"] != 4100.50 {
		t.Errorf("saved close = %v, want 4100.50", saved["TCS.NS"])
	}

	// Second tick in the same minute must not save or exit again.
	s.closeSaveTick()
	if *exits != 1 {
		t.Errorf("close save fired twice, exits = %d", *exits)
	}
}

func TestCloseSaveSkipsOutsideSaveMinute(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"during session", time.Date(2026, 9, 1, 14, 31, 0, 0, time.Local)},
		{"minute after save window", time.Date(2026, 9, 1, 15, 32, 0, 0, time.Local)},
		{"saturday at save time", time.Date(2026, 9, 5, 15, 31, 0, 0, time.Local)},
		{"sunday at save time", time.Date(2026, 9, 6, 15, 31, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, cf, exits := newTestScheduler(t, tt.now)
			store.SetMarketData(map[string]model.Quote{
				"TCS.NS": {Symbol: "TCS.NS", Price: 4100},
			}, nil, nil, map[string]float64{"TCS.NS": 4100})

			s.closeSaveTick()
			if *exits != 0 {
				t.Errorf("unexpected exit at %v", tt.now)
			}
			if len(cf.Load()) != 0 {
				t.Errorf("unexpected save at %v", tt.now)
			}
		})
	}
}

func TestCloseSaveEmptyCacheStillExits(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 31, 0, 0, time.Local)
	s, _, cf, exits := newTestScheduler(t, now)

	// Seed yesterday's file, then save with an empty cache: the file
	// must survive and the process still recycles.
	if err := cf.Save(map[string]float64{"INFY.NS": 1500}); err != nil {
		t.Fatal(err)
	}

	s.closeSaveTick()
	if *exits != 1 {
		t.Fatalf("expected exit, got %d", *exits)
	}
	if got := cf.Load()["INFY.NS"]; got != 1500 {
		t.Errorf("previous file overwritten, INFY.NS = %v", got)
	}
}

func TestResetDailyFlagRearmsSave(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 31, 0, 0, time.Local)
	s, store, _, exits := newTestScheduler(t, now)
	store.SetMarketData(map[string]model.Quote{
		"TCS.NS": {Symbol: "TCS.NS", Price: 4100},
	}, nil, nil, map[string]float64{"TCS.NS": 4100})

	s.closeSaveTick()
	s.resetDailyFlag()
	s.closeSaveTick()
	if *exits != 2 {
		t.Errorf("expected save to re-arm after reset, exits = %d", *exits)
	}
}
