package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockRadar/internal/advisor"
	"StockRadar/internal/analyzer"
	"StockRadar/internal/config"
	"StockRadar/internal/market"
	"StockRadar/internal/notifier"
	"StockRadar/internal/scheduler"
	"StockRadar/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockRadar starting...")

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

	// Init market client
	mkt := market.NewClient(cfg.Market.BaseURL, cfg.Market.AppKey, cfg.Market.AppSecret, cfg.Proxy)

	// Init advisory provider
	var provider advisor.Provider
	switch cfg.Advisor.Provider {
	case "gpt":
		provider = advisor.NewGPTProvider(cfg.Advisor.GPT.APIKey, cfg.Advisor.GPT.Model, cfg.Proxy, cfg.AdvisorTimeout())
	default:
		provider = advisor.NewClaudeProvider(cfg.Advisor.Claude.APIKey, cfg.Advisor.Claude.Model, cfg.Proxy, cfg.AdvisorTimeout())
	}
	log.Printf("[INFO] advisory provider: %s", provider.Name())
	adv := advisor.New(provider, cfg.CacheTTL())

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init analysis service
	svc := analyzer.NewService(mkt, adv, st, analyzer.Options{
		DaysBack:       cfg.Analysis.DaysBack,
		TopN:           cfg.Analysis.TopN,
		CollectWorkers: cfg.Analysis.CollectWorkers,
		AnalyzeWorkers: cfg.Analysis.AnalyzeWorkers,
	})

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, svc, mkt, tn, cfg.Analysis.TopN)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily analysis now")
		go sched.RunNow()
	}

	log.Println("[INFO] StockRadar is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockRadar stopped")
}
