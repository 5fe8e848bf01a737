package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newAPIServer serves the token endpoint plus the given handler for data paths.
func newAPIServer(handler http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"test-token","expires_in":86400}`)
	})
	mux.HandleFunc("/", handler)
	return httptest.NewServer(mux)
}

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(srv.URL, "key", "secret", "")
	c.HTTP = srv.Client()
	c.Tokens = NewTokenCache(srv.URL, "key", "secret", srv.Client())
	return c
}

func TestVolumeRank_TruncatesAndParses(t *testing.T) {
	var items []string
	for i := 1; i <= 15; i++ {
		items = append(items, fmt.Sprintf(
			`{"mksc_shrn_iscd":"%06d","hts_kor_isnm":"Stock %d","stck_prpr":"%d","prdy_ctrt":"1.25","acml_vol":"%d","acml_tr_pbmn":"9000000"}`,
			i, i, 1000*i, 500000+i))
	}
	srv := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, volumeRankPath) {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("tr_id"); got != volumeRankTrID {
			t.Errorf("expected tr_id %s, got %s", volumeRankTrID, got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", got)
		}
		fmt.Fprintf(w, `{"output":[%s]}`, strings.Join(items, ","))
	})
	defer srv.Close()

	ranks, err := newTestClient(srv).VolumeRank(context.Background(), 10)
	if err != nil {
		t.Fatalf("VolumeRank: %v", err)
	}
	if len(ranks) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(ranks))
	}
	for i, r := range ranks {
		if r.Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", i, i+1, r.Rank)
		}
	}
	first := ranks[0]
	if first.Code != "000001" || first.Name != "Stock 1" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.Price != 1000 || first.ChangePercent != 1.25 {
		t.Errorf("numeric fields not parsed: %+v", first)
	}
	if first.Volume != 500001 || first.Amount != 9000000 {
		t.Errorf("volume fields not parsed: %+v", first)
	}
}

func TestVolumeRank_MalformedNumeric(t *testing.T) {
	srv := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"output":[{"mksc_shrn_iscd":"005930","hts_kor_isnm":"X","stck_prpr":"not-a-number","prdy_ctrt":"0","acml_vol":"1","acml_tr_pbmn":"1"}]}`)
	})
	defer srv.Close()

	if _, err := newTestClient(srv).VolumeRank(context.Background(), 10); err == nil {
		t.Fatal("expected parse error for malformed price")
	}
}

func TestDailyPrices_ParsesAndSortsChronologically(t *testing.T) {
	srv := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, dailyChartPath) {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if len(q.Get("FID_INPUT_DATE_1")) != 8 || len(q.Get("FID_INPUT_DATE_2")) != 8 {
			t.Errorf("expected compact 8-digit dates, got %q / %q",
				q.Get("FID_INPUT_DATE_1"), q.Get("FID_INPUT_DATE_2"))
		}
		// Newest-first, as the provider serves them.
		fmt.Fprint(w, `{"output2":[
			{"stck_bsop_date":"20250103","stck_oprc":"105","stck_clpr":"106","stck_hgpr":"108","stck_lwpr":"104","acml_vol":"300"},
			{"stck_bsop_date":"20250102","stck_oprc":"100","stck_clpr":"105","stck_hgpr":"107","stck_lwpr":"99","acml_vol":"200"}
		]}`)
	})
	defer srv.Close()

	prices, err := newTestClient(srv).DailyPrices(context.Background(), "005930", 60)
	if err != nil {
		t.Fatalf("DailyPrices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(prices))
	}
	if !prices[0].TradeDate.Before(prices[1].TradeDate) {
		t.Error("candles not in chronological order")
	}
	p := prices[0]
	if p.Code != "005930" || p.Open != 100 || p.Close != 105 || p.High != 107 || p.Low != 99 || p.Volume != 200 {
		t.Errorf("unexpected first candle: %+v", p)
	}
}

func TestLastTradingDate(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"weekday before close", time.Date(2025, 1, 8, 10, 0, 0, 0, loc), "20250107"},  // Wed morning -> Tue
		{"weekday after close", time.Date(2025, 1, 8, 16, 0, 0, 0, loc), "20250108"},   // Wed evening -> Wed
		{"monday before close", time.Date(2025, 1, 6, 9, 0, 0, 0, loc), "20250103"},    // Mon morning -> Fri
		{"saturday", time.Date(2025, 1, 4, 12, 0, 0, 0, loc), "20250103"},              // Sat -> Fri
		{"sunday", time.Date(2025, 1, 5, 12, 0, 0, 0, loc), "20250103"},                // Sun -> Fri
	}
	for _, tt := range tests {
		got := lastTradingDate(tt.now).Format(compactDate)
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}
