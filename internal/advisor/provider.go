package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Provider turns an analysis prompt into free-form model output. The two
// implementations speak different wire shapes; both normalize to a single
// text string.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

const maxCompletionTokens = 2000

// chatRequest is the request body shared by both providers.
type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func newProviderClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func postChat(ctx context.Context, client *http.Client, endpoint, apiKey string, reqBody chatRequest, out interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post %s: status %d, body: %s", endpoint, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ClaudeProvider calls an Anthropic-style messages endpoint. The response
// nests text under a content array.
type ClaudeProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewClaudeProvider creates a Claude-backed provider.
func NewClaudeProvider(apiKey, model, proxyURL string, timeout time.Duration) *ClaudeProvider {
	return &ClaudeProvider{
		BaseURL: "https://api.anthropic.com",
		APIKey:  apiKey,
		Model:   model,
		Client:  newProviderClient(proxyURL, timeout),
	}
}

func (p *ClaudeProvider) Name() string { return "claude" }

func (p *ClaudeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:     p.Model,
		MaxTokens: maxCompletionTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := postChat(ctx, p.Client, p.BaseURL+"/v1/messages", p.APIKey, reqBody, &response); err != nil {
		return "", err
	}
	if len(response.Content) == 0 || response.Content[0].Text == "" {
		return "", fmt.Errorf("claude response has no content")
	}
	return response.Content[0].Text, nil
}

// GPTProvider calls an OpenAI-style chat-completions endpoint. The response
// nests text under choices/message.
type GPTProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewGPTProvider creates a GPT-backed provider.
func NewGPTProvider(apiKey, model, proxyURL string, timeout time.Duration) *GPTProvider {
	return &GPTProvider{
		BaseURL: "https://api.openai.com",
		APIKey:  apiKey,
		Model:   model,
		Client:  newProviderClient(proxyURL, timeout),
	}
}

func (p *GPTProvider) Name() string { return "gpt" }

func (p *GPTProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:     p.Model,
		MaxTokens: maxCompletionTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := postChat(ctx, p.Client, p.BaseURL+"/v1/chat/completions", p.APIKey, reqBody, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("gpt response has no choices")
	}
	return response.Choices[0].Message.Content, nil
}
