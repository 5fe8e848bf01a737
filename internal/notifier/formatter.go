package notifier

import (
	"fmt"
	"strings"

	"StockRadar/internal/model"

	"github.com/dustin/go-humanize"
)

func recommendationIcon(r model.Recommendation) string {
	switch r {
	case model.RecommendBuy:
		return "🟢"
	case model.RecommendSell:
		return "🔴"
	default:
		return "⚠️"
	}
}

// FormatReport renders a completed analysis batch as a Telegram message.
func FormatReport(results []*model.AnalysisResult) string {
	if len(results) == 0 {
		return "📊 <b>Analysis finished</b>\n\nNo stocks produced a result this run."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Analysis finished</b> | %d stocks\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "%s <b>%s</b> (%s): %s %.0f%%\n",
			recommendationIcon(r.Recommendation), r.Name, r.Code,
			r.Recommendation, r.Confidence*100)
		if r.Summary != "" {
			fmt.Fprintf(&b, "    %s\n", r.Summary)
		}
	}
	return b.String()
}

// FormatJobStatus renders one job for a status query.
func FormatJobStatus(job *model.AnalysisJob) string {
	switch job.Status {
	case model.JobRunning:
		return fmt.Sprintf("⏳ Job <code>%s</code> is still running.", job.ID)
	case model.JobFailed:
		return fmt.Sprintf("❌ Job <code>%s</code> failed: %s", job.ID, job.ErrMsg)
	default:
		return fmt.Sprintf("✅ Job <code>%s</code> is done with %d results.\nUse /latest to see them.",
			job.ID, len(job.Results))
	}
}

// FormatRanking renders the current volume ranking.
func FormatRanking(ranks []model.VolumeRank) string {
	if len(ranks) == 0 {
		return "No ranking data available right now."
	}

	var b strings.Builder
	b.WriteString("🔥 <b>Top volume stocks</b>\n\n")
	for _, r := range ranks {
		fmt.Fprintf(&b, "%2d. <b>%s</b> (%s) %s won %+.2f%%\n    volume %s, amount %s\n",
			r.Rank, r.Name, r.Code,
			humanize.Commaf(r.Price), r.ChangePercent,
			humanize.Comma(r.Volume), humanize.Comma(r.Amount))
	}
	return b.String()
}
