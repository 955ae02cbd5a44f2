package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketTerminal/internal/aggregator"
	"MarketTerminal/internal/api"
	"MarketTerminal/internal/cache"
	"MarketTerminal/internal/closes"
	"MarketTerminal/internal/config"
	"MarketTerminal/internal/news"
	"MarketTerminal/internal/portfolio"
	"MarketTerminal/internal/recorder"
	"MarketTerminal/internal/scheduler"
	"MarketTerminal/internal/source"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketTerminal starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Shared state
	store := cache.New()
	closesFile := closes.NewFile(cfg.Data.ClosesFile)

	// Init sources
	yahoo := source.NewYahoo(cfg.Proxy)
	groww := source.NewGroww(cfg.Groww.APIKey, cfg.Groww.APISecret, cfg.Proxy)
	upstox := source.NewUpstox(cfg.Upstox.APIKey, cfg.Upstox.APISecret,
		cfg.Upstox.RedirectURI, cfg.Upstox.AccessToken, cfg.Proxy)
	verifier := source.NewGoogleFinance(cfg.Proxy)

	if groww.IsConfigured() {
		log.Println("[INFO] groww configured (primary source)")
	} else {
		log.Println("[WARN] groww not configured, brokerage overlay disabled")
	}
	if upstox.IsConfigured() {
		if upstox.HasToken() {
			log.Println("[INFO] upstox configured with token")
		} else {
			log.Println("[INFO] upstox configured, login at /upstox/login for real-time data")
		}
	} else {
		log.Println("[WARN] upstox not configured")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init aggregator and collaborators
	agg := aggregator.New(yahoo, groww, upstox, verifier, closesFile, store, rec,
		cfg.Refresh.FetchWorkers, time.Duration(cfg.Refresh.BatchTimeoutSec)*time.Second)
	newsFetcher := news.NewFetcher(store)

	pm, err := portfolio.NewManager(cfg.Data.PortfolioFile)
	if err != nil {
		log.Fatalf("[FATAL] init portfolio manager: %v", err)
	}
	if pm.Loaded() {
		log.Println("[INFO] portfolio loaded from local cache")
	}

	// Serve yesterday's closes until the first refresh lands.
	if n := closes.Prefill(closesFile, store); n == 0 {
		log.Println("[INFO] no saved closes to prefill")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, agg, newsFetcher, closesFile, store, rec)
	sched.OpenInterval = time.Duration(cfg.Refresh.OpenIntervalSec) * time.Second
	sched.ClosedInterval = time.Duration(cfg.Refresh.ClosedIntervalSec) * time.Second
	sched.NewsInterval = time.Duration(cfg.Refresh.NewsIntervalSec) * time.Second
	sched.Exit = os.Exit
	if err := sched.RegisterJobs(); err != nil {
		log.Fatalf("[FATAL] register cron jobs: %v", err)
	}

	now := time.Now()
	if scheduler.IsMarketOpen(now) {
		log.Println("[INFO] market is OPEN")
	} else {
		log.Println("[INFO] market is CLOSED, serving cached data")
		// One refresh at startup so a restart off-hours doesn't serve
		// prefilled closes with zero change all evening.
		go agg.Refresh(ctx)
	}
	go newsFetcher.Fetch(ctx)

	sched.Start()
	defer sched.Stop()

	// HTTP server
	gin.SetMode(gin.ReleaseMode)
	srv := &api.Server{
		Store:      store,
		Aggregator: agg,
		Closes:     closesFile,
		Portfolio:  pm,
		Groww:      groww,
		Upstox:     upstox,
		EnvFile:    cfg.Data.EnvFile,
	}
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Router(),
	}
	go func() {
		log.Printf("[INFO] API listening on :%s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] MarketTerminal is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] MarketTerminal stopped")
}
