// Package advisor sends collected stock datasets to an external generative
// model and turns its free-form output into structured recommendations.
package advisor

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockRadar/internal/model"
)

const (
	maxRetries     = 2
	initialBackoff = 2 * time.Second
	maxBackoff     = 8 * time.Second
)

// Client wraps a Provider with retry, backoff, and per-stock result caching.
type Client struct {
	Provider Provider
	Cache    *ResultCache

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Client around the given provider.
func New(provider Provider, cacheTTL time.Duration) *Client {
	return &Client{
		Provider: provider,
		Cache:    NewResultCache(cacheTTL),
		sleep:    sleepCtx,
	}
}

// Analyze produces a structured recommendation for one dataset. Transient
// provider failures are retried with exponential backoff; a response that
// cannot be parsed still yields a result, with the ERROR recommendation.
func (c *Client) Analyze(ctx context.Context, ds *model.StockDataset) (*model.AnalysisResult, error) {
	code := ds.Rank.Code

	if cached, ok := c.Cache.Get(code); ok {
		log.Printf("[INFO] advisor cache hit: %s", code)
		return cached, nil
	}

	text, err := c.completeWithRetry(ctx, BuildPrompt(ds), code)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", code, err)
	}

	parsed := ParseResponse(text)
	now := time.Now()
	result := &model.AnalysisResult{
		Code:           code,
		Name:           ds.Rank.Name,
		AnalysisDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Analysis:       parsed.Analysis,
		Recommendation: parsed.Recommendation,
		Confidence:     parsed.Confidence,
		Summary:        parsed.Summary,
		CreatedAt:      now,
	}

	c.Cache.Set(code, result)
	return result, nil
}

func (c *Client) completeWithRetry(ctx context.Context, prompt, code string) (string, error) {
	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[WARN] %s call failed for %s (attempt %d/%d): %v, retrying in %v",
				c.Provider.Name(), code, attempt, maxRetries, lastErr, backoff)
			if err := c.sleep(ctx, backoff); err != nil {
				return "", err
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
		text, err := c.Provider.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
