package store

import (
	"time"

	"StockRadar/internal/model"
)

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveSnapshot(_ *model.StockDataset) error          { return nil }
func (n *NoopStore) SaveDailyPrices(_ []model.DailyPrice) error        { return nil }
func (n *NoopStore) SaveResults(_ []*model.AnalysisResult) error       { return nil }
func (n *NoopStore) Close() error                                      { return nil }

func (n *NoopStore) ResultByCodeAndDate(_ string, _ time.Time) (*model.AnalysisResult, error) {
	return nil, ErrNotFound
}

func (n *NoopStore) LatestResults(_ time.Time, _ int) ([]*model.AnalysisResult, error) {
	return nil, nil
}
