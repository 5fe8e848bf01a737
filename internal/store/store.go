package store

import (
	"errors"
	"time"

	"StockRadar/internal/model"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Store persists collected market data and analysis results. The pipeline
// treats it as a write-through sink: a store failure is logged by the
// caller, never used for control flow.
type Store interface {
	SaveSnapshot(ds *model.StockDataset) error
	SaveDailyPrices(prices []model.DailyPrice) error
	SaveResults(results []*model.AnalysisResult) error
	ResultByCodeAndDate(code string, date time.Time) (*model.AnalysisResult, error)
	LatestResults(date time.Time, n int) ([]*model.AnalysisResult, error)
	Close() error
}
