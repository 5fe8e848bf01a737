package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

const tokenPath = "/oauth2/tokenP"

// defaultLease is used when the provider omits expires_in.
const defaultLease = 24 * time.Hour

// TokenCache holds the shared access token for the market-data API and
// refreshes it lazily. The mutex is held across the issuance call so that
// concurrent callers during a refresh share a single request.
type TokenCache struct {
	baseURL   string
	appKey    string
	appSecret string
	client    *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time

	now func() time.Time
}

// NewTokenCache creates a cache issuing tokens against the given base URL.
func NewTokenCache(baseURL, appKey, appSecret string, client *http.Client) *TokenCache {
	return &TokenCache{
		baseURL:   baseURL,
		appKey:    appKey,
		appSecret: appSecret,
		client:    client,
		now:       time.Now,
	}
}

// Token returns a currently valid access token, refreshing it when absent
// or expired. Issuance failures are returned as-is and never retried here.
func (t *TokenCache) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry) {
		return t.token, nil
	}

	token, lease, err := t.issue(ctx)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	t.token = token
	t.expiry = t.now().Add(lease)
	log.Printf("[INFO] access token refreshed, lease %v", lease)
	return t.token, nil
}

func (t *TokenCache) issue(ctx context.Context) (string, time.Duration, error) {
	payload := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     t.appKey,
		"appsecret":  t.appSecret,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("token endpoint: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", 0, fmt.Errorf("token endpoint returned empty access_token")
	}

	lease := defaultLease
	if result.ExpiresIn > 0 {
		lease = time.Duration(result.ExpiresIn) * time.Second
	}
	return result.AccessToken, lease, nil
}
