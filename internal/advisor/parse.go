package advisor

import (
	"encoding/json"
	"strings"

	"StockRadar/internal/model"
)

// Response is the structured recommendation extracted from raw model output.
type Response struct {
	Recommendation model.Recommendation
	Confidence     float64
	Summary        string
	Analysis       string
}

// ParseResponse splits model output at the last opening brace: everything
// before it is the narrative, everything from it onward must be a JSON
// object with recommendation, confidence, and summary. Malformed or missing
// JSON never fails; it degrades to an ERROR recommendation carrying the
// full original text.
func ParseResponse(fullText string) Response {
	idx := strings.LastIndex(fullText, "{")
	if idx == -1 {
		return errorResponse(fullText)
	}

	jsonPart := strings.TrimSpace(fullText[idx:])
	narrative := strings.TrimSpace(fullText[:idx])

	var payload struct {
		Recommendation string  `json:"recommendation"`
		Confidence     float64 `json:"confidence"`
		Summary        string  `json:"summary"`
	}
	if err := json.Unmarshal([]byte(jsonPart), &payload); err != nil {
		return errorResponse(fullText)
	}

	rec := model.Recommendation(payload.Recommendation)
	if !rec.Valid() {
		return errorResponse(fullText)
	}

	return Response{
		Recommendation: rec,
		Confidence:     payload.Confidence,
		Summary:        payload.Summary,
		Analysis:       stripJSONFence(narrative),
	}
}

func errorResponse(fullText string) Response {
	return Response{
		Recommendation: model.RecommendError,
		Confidence:     0.0,
		Summary:        "failed to parse analysis response",
		Analysis:       fullText,
	}
}

// stripJSONFence removes a ```json ... ``` block some models emit despite
// being told not to.
func stripJSONFence(text string) string {
	start := strings.Index(text, "```json")
	if start == -1 {
		return text
	}
	end := strings.Index(text[start+7:], "```")
	if end == -1 {
		return text
	}
	return strings.TrimSpace(text[:start] + text[start+7+end+3:])
}
