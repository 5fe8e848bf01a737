package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"StockRadar/internal/analyzer"
	"StockRadar/internal/model"
	"StockRadar/internal/notifier"

	"github.com/robfig/cron/v3"
)

// jobPollInterval is how often a watch goroutine re-checks a running job.
const jobPollInterval = 5 * time.Second

// jobWatchLimit bounds how long a watch goroutine waits before giving up.
const jobWatchLimit = 30 * time.Minute

// Scheduler manages the daily analysis cron task and Telegram commands.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *analyzer.Service
	Market   analyzer.MarketData
	Notifier *notifier.TelegramNotifier
	TopN     int
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *analyzer.Service, market analyzer.MarketData, tn *notifier.TelegramNotifier, topN int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Market:   market,
		Notifier: tn,
		TopN:     topN,
		Ctx:      ctx,
	}
}

// Register registers the daily analysis task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow triggers the daily analysis immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily analysis")
	id := s.Service.Submit()
	s.trySend(fmt.Sprintf("🚀 Daily analysis started.\nJob <code>%s</code>", id))
	go s.watchJob(id)
}

// watchJob polls a submitted job until it reaches a terminal state, then
// delivers the report.
func (s *Scheduler) watchJob(id string) {
	deadline := time.Now().Add(jobWatchLimit)
	for time.Now().Before(deadline) {
		select {
		case <-s.Ctx.Done():
			return
		case <-time.After(jobPollInterval):
		}

		job, ok := s.Service.Job(id)
		if !ok {
			log.Printf("[ERROR] watch job %s: not found", id)
			return
		}
		switch job.Status {
		case model.JobDone:
			s.trySend(notifier.FormatReport(job.Results))
			return
		case model.JobFailed:
			s.trySend(notifier.FormatJobStatus(job))
			return
		}
	}
	log.Printf("[WARN] watch job %s: still running after %s, giving up", id, jobWatchLimit)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	cmd, arg := splitCommand(command)
	switch cmd {
	case "/run":
		id := s.Service.Submit()
		go s.watchJob(id)
		return fmt.Sprintf("🚀 Analysis started.\nJob <code>%s</code>\nCheck it with /status %s", id, id)
	case "/status":
		if arg == "" {
			return "Usage: /status &lt;job id&gt;"
		}
		job, ok := s.Service.Job(arg)
		if !ok {
			return fmt.Sprintf("No job with id <code>%s</code>.", arg)
		}
		return notifier.FormatJobStatus(job)
	case "/latest":
		results, err := s.Service.Latest()
		if err != nil {
			log.Printf("[ERROR] load latest results: %v", err)
			return "Could not load today's results."
		}
		if len(results) == 0 {
			return "No results for today yet. Start a run with /run."
		}
		return notifier.FormatReport(results)
	case "/top":
		ctx, cancel := context.WithTimeout(s.Ctx, 30*time.Second)
		defer cancel()
		ranks, err := s.Market.VolumeRank(ctx, s.TopN)
		if err != nil {
			log.Printf("[ERROR] volume rank: %v", err)
			return "Could not fetch the volume ranking."
		}
		return notifier.FormatRanking(ranks)
	default:
		return "Available commands:\n• /run - start an analysis\n• /status &lt;id&gt; - check a job\n• /latest - today's results\n• /top - current volume ranking"
	}
}

func splitCommand(command string) (cmd, arg string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], fields[1]
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
