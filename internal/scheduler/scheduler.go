// Package scheduler drives the three timing loops: the price loop with its
// open/closed dual cadence, the news job, and the market-close save.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"MarketTerminal/internal/aggregator"
	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/closes"
	"MarketTerminal/internal/news"
	"MarketTerminal/internal/recorder"

	"github.com/robfig/cron/v3"
)

// NSE session: Monday to Friday, 09:15:00 to 15:30:00 inclusive.
const (
	openSeconds  = 9*3600 + 15*60
	closeSeconds = 15*3600 + 30*60
)

// IsMarketOpen reports whether the exchange is in its regular session at t.
// Both boundaries are inclusive to the second: 15:30:00 is open, 15:30:01
// is not.
func IsMarketOpen(t time.Time) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	secs := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return secs >= openSeconds && secs <= closeSeconds
}

// Scheduler manages the cron jobs and the price loop.
type Scheduler struct {
	Cron       *cron.Cron
	Aggregator *aggregator.Aggregator
	News       *news.Fetcher
	Closes     *closes.File
	Store      *cache.Store
	Recorder   recorder.Recorder
	Ctx        context.Context

	OpenInterval   time.Duration
	ClosedInterval time.Duration
	NewsInterval   time.Duration

	// Now and Exit are swappable for tests.
	Now  func() time.Time
	Exit func(code int)

	mu         sync.Mutex
	savedToday bool
}

// NewScheduler creates a Scheduler with real clock and process exit.
func NewScheduler(ctx context.Context, agg *aggregator.Aggregator, nf *news.Fetcher, cf *closes.File, st *cache.Store, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:           cron.New(cron.WithSeconds()),
		Aggregator:     agg,
		News:           nf,
		Closes:         cf,
		Store:          st,
		Recorder:       rec,
		Ctx:            ctx,
		OpenInterval:   30 * time.Second,
		ClosedInterval: time.Minute,
		NewsInterval:   5 * time.Minute,
		Now:            time.Now,
		Exit:           nil,
	}
}

// RegisterJobs registers the news job, the close-save poll, and the daily
// flag reset.
func (s *Scheduler) RegisterJobs() error {
	if _, err := s.Cron.AddFunc(fmt.Sprintf("@every %s", s.NewsInterval), s.newsTask); err != nil {
		return fmt.Errorf("register news task: %w", err)
	}
	// Close-save poll: every 30 seconds so the 15:31 minute is never missed.
	if _, err := s.Cron.AddFunc("*/30 * * * * *", s.closeSaveTick); err != nil {
		return fmt.Errorf("register close-save poll: %w", err)
	}
	// Daily flag reset at midnight.
	if _, err := s.Cron.AddFunc("0 0 0 * * *", s.resetDailyFlag); err != nil {
		return fmt.Errorf("register daily reset: %w", err)
	}
	return nil
}

func (s *Scheduler) resetDailyFlag() {
	s.mu.Lock()
	s.savedToday = false
	s.mu.Unlock()
	log.Println("[INFO] close-save flag reset")
}

// Start starts the cron scheduler and the price loop.
func (s *Scheduler) Start() {
	s.Cron.Start()
	go s.runPriceLoop()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully. The price loop exits with the
// context.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// runPriceLoop refreshes every OpenInterval while the market is open and
// idles at ClosedInterval otherwise. Cadence is re-evaluated each pass, so
// the loop speeds up within one closed-interval of the open.
func (s *Scheduler) runPriceLoop() {
	for {
		wait := s.ClosedInterval
		if IsMarketOpen(s.Now()) {
			s.Aggregator.Refresh(s.Ctx)
			wait = s.OpenInterval
		}
		select {
		case <-s.Ctx.Done():
			log.Println("[INFO] price loop stopped")
			return
		case <-time.After(wait):
		}
	}
}

func (s *Scheduler) newsTask() {
	s.News.Fetch(s.Ctx)
}

// closeSaveTick fires the one-shot close save in the 15:31 minute on
// weekdays, one minute after the session ends so the official close has
// settled. After a successful save the process exits; the supervisor
// restarts it fresh for the next day.
func (s *Scheduler) closeSaveTick() {
	now := s.Now()
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return
	}
	if now.Hour() != 15 || now.Minute() != 31 {
		return
	}

	s.mu.Lock()
	if s.savedToday {
		s.mu.Unlock()
		return
	}
	s.savedToday = true
	s.mu.Unlock()

	saved, err := closes.SaveMarketClose(s.Closes, s.Store)
	if err != nil {
		log.Printf("[ERROR] market close save: %v", err)
	}
	if saved > 0 {
		if err := s.Recorder.RecordCloseSave(&recorder.CloseRecord{
			Symbols: saved,
			File:    s.Closes.Path,
		}); err != nil {
			log.Printf("[ERROR] record close save: %v", err)
		}
	}

	if s.Exit != nil {
		log.Println("[INFO] market closed, exiting for daily restart")
		s.Exit(0)
	}
}
