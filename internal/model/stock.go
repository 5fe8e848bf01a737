package model

import "time"

// VolumeRank is one entry of the trading-volume ranking, as served by the
// market-data provider. Rank starts at 1.
type VolumeRank struct {
	Code          string
	Name          string
	Price         float64
	ChangePercent float64
	Volume        int64
	Amount        int64
	Rank          int
}

// DailyPrice represents a single daily candle.
type DailyPrice struct {
	Code      string    `json:"code"`
	TradeDate time.Time `json:"tradeDate"`
	Open      float64   `json:"open"`
	Close     float64   `json:"close"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Volume    int64     `json:"volume"`
}

// StockDataset bundles one ranked stock with its fetched candle window and
// the high/low observed across that window. It lives only for the duration
// of a single analysis run.
type StockDataset struct {
	Rank   VolumeRank
	Prices []DailyPrice
	High52w float64
	Low52w  float64
}
