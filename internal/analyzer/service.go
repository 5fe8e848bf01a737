// Package analyzer runs the two-stage collect-then-analyze pipeline:
// rank the most traded stocks, fetch their candle windows concurrently,
// then fan the datasets out to the advisory model over a second, smaller
// pool. Runs are tracked as asynchronous jobs.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"StockRadar/internal/calculator"
	"StockRadar/internal/model"
	"StockRadar/internal/pool"
	"StockRadar/internal/store"

	"github.com/google/uuid"
)

// MarketData is the slice of the market client the pipeline consumes.
type MarketData interface {
	VolumeRank(ctx context.Context, n int) ([]model.VolumeRank, error)
	DailyPrices(ctx context.Context, code string, days int) ([]model.DailyPrice, error)
}

// Advisor produces a structured recommendation for one dataset.
type Advisor interface {
	Analyze(ctx context.Context, ds *model.StockDataset) (*model.AnalysisResult, error)
}

// Options tunes the pipeline stages.
type Options struct {
	DaysBack       int
	TopN           int
	CollectWorkers int
	AnalyzeWorkers int
}

// Service orchestrates analysis runs and answers job lookups.
type Service struct {
	market  MarketData
	advisor Advisor
	store   store.Store
	jobs    *JobStore
	opts    Options
}

// NewService wires the pipeline collaborators together.
func NewService(market MarketData, advisor Advisor, st store.Store, opts Options) *Service {
	return &Service{
		market:  market,
		advisor: advisor,
		store:   st,
		jobs:    NewJobStore(),
		opts:    opts,
	}
}

// Submit registers a new RUNNING job, launches the pipeline in the
// background, and returns the job id without blocking on the run.
func (s *Service) Submit() string {
	id := uuid.NewString()
	s.jobs.Save(&model.AnalysisJob{ID: id, Status: model.JobRunning})
	log.Printf("[INFO] analysis job submitted: %s", id)

	go s.run(id)
	return id
}

// Job returns the current record for a job id.
func (s *Service) Job(id string) (*model.AnalysisJob, bool) {
	return s.jobs.Get(id)
}

// Latest returns today's most recently persisted results, newest first.
func (s *Service) Latest() ([]*model.AnalysisResult, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.store.LatestResults(today, s.opts.TopN)
}

func (s *Service) run(id string) {
	results, err := s.runPipeline(context.Background())
	if err != nil {
		log.Printf("[ERROR] analysis job %s failed: %v", id, err)
		s.jobs.Save(&model.AnalysisJob{ID: id, Status: model.JobFailed, ErrMsg: err.Error()})
		return
	}
	s.jobs.Save(&model.AnalysisJob{ID: id, Status: model.JobDone, Results: results})
	log.Printf("[INFO] analysis job %s done: %d results", id, len(results))
}

// runPipeline executes both stages. Per-item failures are dropped inside
// the stages; only an error from the orchestration itself fails the job.
func (s *Service) runPipeline(ctx context.Context) ([]*model.AnalysisResult, error) {
	datasets := s.collect(ctx)
	log.Printf("[INFO] collection stage done: %d datasets", len(datasets))

	results := s.analyze(ctx, datasets)
	log.Printf("[INFO] analysis stage done: %d results", len(results))

	if len(results) > 0 {
		if err := s.store.SaveResults(results); err != nil {
			return nil, fmt.Errorf("persist analysis batch: %w", err)
		}
	}

	logReport(results)
	return results, nil
}

// collect fans one candle fetch per ranked stock out over the collection
// pool. Stocks whose fetch failed or returned nothing are dropped; a
// ranking failure degrades to an empty run rather than an error.
func (s *Service) collect(ctx context.Context) []*model.StockDataset {
	ranks, err := s.market.VolumeRank(ctx, s.opts.TopN)
	if err != nil {
		log.Printf("[WARN] volume rank fetch failed, proceeding with empty run: %v", err)
		return nil
	}

	p := pool.New(s.opts.CollectWorkers, s.opts.CollectWorkers*2)
	defer p.Close()

	collected := make([]*model.StockDataset, len(ranks))
	var wg sync.WaitGroup
	for i, rank := range ranks {
		i, rank := i, rank
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			ds, err := s.collectOne(ctx, rank)
			if err != nil {
				log.Printf("[WARN] collect %s: %v", rank.Code, err)
				return
			}
			collected[i] = ds
		})
	}
	wg.Wait()

	datasets := make([]*model.StockDataset, 0, len(collected))
	for _, ds := range collected {
		if ds != nil {
			datasets = append(datasets, ds)
		}
	}
	return datasets
}

func (s *Service) collectOne(ctx context.Context, rank model.VolumeRank) (*model.StockDataset, error) {
	prices, err := s.market.DailyPrices(ctx, rank.Code, s.opts.DaysBack)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no daily prices in window")
	}

	high, low := calculator.WindowRange(prices)
	ds := &model.StockDataset{
		Rank:    rank,
		Prices:  prices,
		High52w: high,
		Low52w:  low,
	}

	// Write-through persistence; a store failure never drops the dataset.
	if err := s.store.SaveSnapshot(ds); err != nil {
		log.Printf("[ERROR] save snapshot %s: %v", rank.Code, err)
	}
	if err := s.store.SaveDailyPrices(prices); err != nil {
		log.Printf("[ERROR] save daily prices %s: %v", rank.Code, err)
	}
	return ds, nil
}

// analyze fans the datasets out over the advisory pool and keeps the
// results that came back. Per-item advisory failures are dropped.
func (s *Service) analyze(ctx context.Context, datasets []*model.StockDataset) []*model.AnalysisResult {
	p := pool.New(s.opts.AnalyzeWorkers, s.opts.AnalyzeWorkers*2)
	defer p.Close()

	analyzed := make([]*model.AnalysisResult, len(datasets))
	var wg sync.WaitGroup
	for i, ds := range datasets {
		i, ds := i, ds
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			result, err := s.advisor.Analyze(ctx, ds)
			if err != nil {
				log.Printf("[WARN] analyze %s: %v", ds.Rank.Code, err)
				return
			}
			analyzed[i] = result
		})
	}
	wg.Wait()

	results := make([]*model.AnalysisResult, 0, len(analyzed))
	for _, r := range analyzed {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}

func logReport(results []*model.AnalysisResult) {
	for _, r := range results {
		log.Printf("[INFO] [%s] %s: %s (%.2f) %s", r.Code, r.Name, r.Recommendation, r.Confidence, r.Summary)
	}
}
