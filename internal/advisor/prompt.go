package advisor

import (
	"fmt"
	"strings"

	"StockRadar/internal/calculator"
	"StockRadar/internal/model"
)

// promptCandles caps how many recent candles are embedded in the prompt.
const promptCandles = 10

// BuildPrompt renders the analysis prompt for one dataset. The output is
// deterministic for a given dataset, which keeps cached results meaningful.
func BuildPrompt(ds *model.StockDataset) string {
	var b strings.Builder

	b.WriteString("The following is one of the highest-volume stocks on the Korean market today.\n")
	b.WriteString("Perform a technical analysis of the price and volume data and give an investment opinion.\n\n")

	fmt.Fprintf(&b, "[Stock]\nName: %s\nCode: %s\n\n", ds.Rank.Name, ds.Rank.Code)

	fmt.Fprintf(&b, "[Current quote]\nPrice: %.0f\nChange: %+.2f%%\nVolume: %d shares\nTraded amount: %d\n\n",
		ds.Rank.Price, ds.Rank.ChangePercent, ds.Rank.Volume, ds.Rank.Amount)

	fmt.Fprintf(&b, "[52-week range]\nHigh: %.0f\nLow: %.0f\nCurrent level: %.2f%% above the 52-week low\n\n",
		ds.High52w, ds.Low52w, calculator.PositionAboveLow(ds.Rank.Price, ds.Low52w))

	b.WriteString("[Recent daily candles]\n")
	b.WriteString(formatCandles(ds.Prices))
	b.WriteString("\n")

	b.WriteString(`-----------------------
[Requested analysis]

1. Technical analysis of the data above (trend, support/resistance, moving-average view)
2. Volume analysis (recent volume pattern and what it implies)
3. Price movement analysis (volatility and dominant flow)
4. Consider short, medium, and long horizons, but conclude with a single overall verdict (buy or sell).
5. State the reasoning and the main risks.

-----------------------
[Output rules]

- Write the analysis body in Markdown. Section headers start with '### '.
- Do not use the word recommendation outside of the JSON.
- The very last line of the response must be a pure JSON object, with no code fence and no text after it.
- recommendation must be BUY or SELL. confidence is a decimal between 0.0 and 1.0. summary is a one-line summary.

{
  "recommendation": "BUY|SELL",
  "confidence": 0.0,
  "summary": "one-line summary"
}
`)
	return b.String()
}

// formatCandles renders up to the most recent promptCandles candles, newest
// first. The series is expected in chronological order.
func formatCandles(prices []model.DailyPrice) string {
	if len(prices) == 0 {
		return "(no data)\n"
	}
	var b strings.Builder
	count := len(prices)
	if count > promptCandles {
		count = promptCandles
	}
	for i := 0; i < count; i++ {
		p := prices[len(prices)-1-i]
		fmt.Fprintf(&b, "%s: open %.0f, close %.0f, high %.0f, low %.0f, volume %d\n",
			p.TradeDate.Format("2006-01-02"), p.Open, p.Close, p.High, p.Low, p.Volume)
	}
	return b.String()
}
