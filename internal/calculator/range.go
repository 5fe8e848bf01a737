package calculator

import (
	"math"

	"StockRadar/internal/model"
)

// WindowRange scans a candle window and returns the highest high and lowest
// low. An empty window yields 0, 0.
func WindowRange(prices []model.DailyPrice) (high, low float64) {
	if len(prices) == 0 {
		return 0, 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices {
		if p.High > high {
			high = p.High
		}
		if p.Low < low {
			low = p.Low
		}
	}
	return high, low
}

// PositionAboveLow returns how far current sits above the window low, as a
// percentage of the low. A zero low yields 0 to avoid dividing by it.
func PositionAboveLow(current, low float64) float64 {
	if low == 0 {
		return 0
	}
	return (current - low) / low * 100
}
