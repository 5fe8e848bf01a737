package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClaudeProvider_NormalizesContentArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "claude-test" || req.MaxTokens != maxCompletionTokens {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		fmt.Fprint(w, `{"content":[{"type":"text","text":"claude says buy"}]}`)
	}))
	defer srv.Close()

	p := NewClaudeProvider("k", "claude-test", "", 10*time.Second)
	p.BaseURL = srv.URL
	p.Client = srv.Client()

	text, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "claude says buy" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestGPTProvider_NormalizesChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"gpt says sell"}}]}`)
	}))
	defer srv.Close()

	p := NewGPTProvider("k", "gpt-test", "", 10*time.Second)
	p.BaseURL = srv.URL
	p.Client = srv.Client()

	text, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "gpt says sell" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestProvider_EmptyResponseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	defer srv.Close()

	p := NewClaudeProvider("k", "m", "", 10*time.Second)
	p.BaseURL = srv.URL
	p.Client = srv.Client()

	if _, err := p.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for empty content")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	ds := testDataset("005930")
	if BuildPrompt(ds) != BuildPrompt(ds) {
		t.Error("prompt must be deterministic for the same dataset")
	}
	prompt := BuildPrompt(ds)
	for _, want := range []string{"005930", "Test Corp", "25.00% above the 52-week low"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
