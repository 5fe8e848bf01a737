package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTokenServer(t *testing.T, calls *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != tokenPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		n := atomic.AddInt64(calls, 1)
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":86400}`, n)
	}))
}

func TestToken_ConcurrentCallersShareOneIssuance(t *testing.T) {
	var calls int64
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	tc := NewTokenCache(srv.URL, "key", "secret", srv.Client())

	const callers = 20
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := tc.Token(context.Background())
			if err != nil {
				t.Errorf("Token: %v", err)
				return
			}
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected exactly 1 issuance call, got %d", calls)
	}
	for i := 1; i < callers; i++ {
		if tokens[i] != tokens[0] {
			t.Errorf("caller %d got %q, caller 0 got %q", i, tokens[i], tokens[0])
		}
	}
}

func TestToken_RefreshAfterExpiry(t *testing.T) {
	var calls int64
	srv := newTokenServer(t, &calls)
	defer srv.Close()

	tc := NewTokenCache(srv.URL, "key", "secret", srv.Client())

	first, err := tc.Token(context.Background())
	if err != nil {
		t.Fatalf("first Token: %v", err)
	}

	// Jump past the lease.
	tc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	second, err := tc.Token(context.Background())
	if err != nil {
		t.Fatalf("second Token: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 issuance calls after expiry, got %d", calls)
	}
	if first == second {
		t.Errorf("expected a new token after expiry, got %q twice", first)
	}

	// Still valid at the shifted clock: no third call.
	if _, err := tc.Token(context.Background()); err != nil {
		t.Fatalf("third Token: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected cached token to be reused, got %d calls", calls)
	}
}

func TestToken_IssuanceFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tc := NewTokenCache(srv.URL, "key", "bad-secret", srv.Client())
	if _, err := tc.Token(context.Background()); err == nil {
		t.Fatal("expected an error from failed issuance")
	}
}
