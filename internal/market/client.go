package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"StockRadar/internal/model"
)

const (
	volumeRankPath = "/uapi/domestic-stock/v1/quotations/volume-rank"
	dailyChartPath = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"

	volumeRankTrID = "FHPST01710000"
	dailyChartTrID = "FHKST03010100"
)

// compactDate is the provider's 8-digit date format.
const compactDate = "20060102"

// Client talks to a KIS-style domestic stock API. All numeric fields in
// the provider's payloads arrive as strings and are parsed here.
type Client struct {
	BaseURL   string
	AppKey    string
	AppSecret string
	Tokens    *TokenCache
	HTTP      *http.Client

	now func() time.Time
}

// NewClient creates a client with optional proxy support.
func NewClient(baseURL, appKey, appSecret, proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
	return &Client{
		BaseURL:   baseURL,
		AppKey:    appKey,
		AppSecret: appSecret,
		Tokens:    NewTokenCache(baseURL, appKey, appSecret, httpClient),
		HTTP:      httpClient,
		now:       time.Now,
	}
}

type rankItem struct {
	Code          string `json:"mksc_shrn_iscd"`
	Name          string `json:"hts_kor_isnm"`
	Price         string `json:"stck_prpr"`
	ChangePercent string `json:"prdy_ctrt"`
	Volume        string `json:"acml_vol"`
	Amount        string `json:"acml_tr_pbmn"`
}

// VolumeRank returns the top n stocks by accumulated trading volume, in
// rank order.
func (c *Client) VolumeRank(ctx context.Context, n int) ([]model.VolumeRank, error) {
	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_COND_SCR_DIV_CODE", "20171")
	params.Set("FID_INPUT_ISCD", "0002")
	params.Set("FID_DIV_CLS_CODE", "0")
	params.Set("FID_BLNG_CLS_CODE", "0")
	params.Set("FID_TRGT_CLS_CODE", "111111111")
	params.Set("FID_TRGT_EXLS_CLS_CODE", "000000")
	params.Set("FID_INPUT_PRICE_1", "0")
	params.Set("FID_INPUT_PRICE_2", "0")
	params.Set("FID_VOL_CNT", "0")
	params.Set("FID_INPUT_DATE_1", "0")

	var response struct {
		Output []rankItem `json:"output"`
	}
	if err := c.callAPI(ctx, volumeRankPath, params, volumeRankTrID, &response); err != nil {
		return nil, fmt.Errorf("volume rank: %w", err)
	}

	if len(response.Output) > n {
		response.Output = response.Output[:n]
	}
	ranks := make([]model.VolumeRank, 0, len(response.Output))
	for i, item := range response.Output {
		price, err := strconv.ParseFloat(item.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("volume rank: parse price %q: %w", item.Price, err)
		}
		changePct, err := strconv.ParseFloat(item.ChangePercent, 64)
		if err != nil {
			return nil, fmt.Errorf("volume rank: parse change percent %q: %w", item.ChangePercent, err)
		}
		volume, err := strconv.ParseInt(item.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("volume rank: parse volume %q: %w", item.Volume, err)
		}
		amount, err := strconv.ParseInt(item.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("volume rank: parse amount %q: %w", item.Amount, err)
		}
		ranks = append(ranks, model.VolumeRank{
			Code:          item.Code,
			Name:          item.Name,
			Price:         price,
			ChangePercent: changePct,
			Volume:        volume,
			Amount:        amount,
			Rank:          i + 1,
		})
	}
	return ranks, nil
}

type candleItem struct {
	Date   string `json:"stck_bsop_date"`
	Open   string `json:"stck_oprc"`
	Close  string `json:"stck_clpr"`
	High   string `json:"stck_hgpr"`
	Low    string `json:"stck_lwpr"`
	Volume string `json:"acml_vol"`
}

// DailyPrices returns daily candles for a trailing window of the given
// length ending at the last completed trading session, in chronological
// order.
func (c *Client) DailyPrices(ctx context.Context, code string, days int) ([]model.DailyPrice, error) {
	end := lastTradingDate(c.now())
	start := end.AddDate(0, 0, -(days - 1))

	params := url.Values{}
	params.Set("FID_COND_MRKT_DIV_CODE", "J")
	params.Set("FID_INPUT_ISCD", code)
	params.Set("FID_INPUT_DATE_1", start.Format(compactDate))
	params.Set("FID_INPUT_DATE_2", end.Format(compactDate))
	params.Set("FID_PERIOD_DIV_CODE", "D")
	params.Set("FID_ORG_ADJ_PRC", "0")

	var response struct {
		Output []candleItem `json:"output2"`
	}
	if err := c.callAPI(ctx, dailyChartPath, params, dailyChartTrID, &response); err != nil {
		return nil, fmt.Errorf("daily prices %s: %w", code, err)
	}

	prices := make([]model.DailyPrice, 0, len(response.Output))
	for _, item := range response.Output {
		p, err := parseCandle(code, item)
		if err != nil {
			return nil, fmt.Errorf("daily prices %s: %w", code, err)
		}
		prices = append(prices, p)
	}
	// Provider returns newest-first; keep chronological order.
	sort.Slice(prices, func(i, j int) bool { return prices[i].TradeDate.Before(prices[j].TradeDate) })
	return prices, nil
}

func parseCandle(code string, item candleItem) (model.DailyPrice, error) {
	date, err := time.Parse(compactDate, item.Date)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("parse trade date %q: %w", item.Date, err)
	}
	open, err := strconv.ParseFloat(item.Open, 64)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("parse open %q: %w", item.Open, err)
	}
	closeP, err := strconv.ParseFloat(item.Close, 64)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("parse close %q: %w", item.Close, err)
	}
	high, err := strconv.ParseFloat(item.High, 64)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("parse high %q: %w", item.High, err)
	}
	low, err := strconv.ParseFloat(item.Low, 64)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("parse low %q: %w", item.Low, err)
	}
	volume, err := strconv.ParseInt(item.Volume, 10, 64)
	if err != nil {
		return model.DailyPrice{}, fmt.Errorf("parse volume %q: %w", item.Volume, err)
	}
	return model.DailyPrice{
		Code:      code,
		TradeDate: date,
		Open:      open,
		Close:     closeP,
		High:      high,
		Low:       low,
		Volume:    volume,
	}, nil
}

// lastTradingDate returns the end date for a candle window: today's candle
// is unconfirmed before the 15:30 session close, and weekend dates roll
// back to the preceding Friday.
func lastTradingDate(now time.Time) time.Time {
	day := now
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 15, 30, 0, 0, now.Location())
	if now.Before(cutoff) {
		day = day.AddDate(0, 0, -1)
	}
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

func (c *Client) callAPI(ctx context.Context, path string, params url.Values, trID string, out interface{}) error {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return err
	}

	endpoint := c.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("appkey", c.AppKey)
	req.Header.Set("appsecret", c.AppSecret)
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("call %s: status %d, body: %s", path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
