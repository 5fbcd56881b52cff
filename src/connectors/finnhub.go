// REST API CLIENT FOR FINNHUB
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const defaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubQuote mirrors the /quote payload. Finnhub omits fields for unknown
// tickers; absent values decode to zero and are treated as "no data".
type FinnhubQuote struct {
	Current   float64 `json:"c"`
	PrevClose float64 `json:"pc"`
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	ChangePct float64 `json:"dp"`
	Volume    float64 `json:"v"`
}

// FinnhubProfile mirrors the /stock/profile2 payload.
type FinnhubProfile struct {
	ShareOutstanding     float64  `json:"shareOutstanding"`
	MarketCapitalization *float64 `json:"marketCapitalization"`
	Name                 string   `json:"name"`
}

type finnhubMetricsResponse struct {
	Metric FinnhubMetrics `json:"metric"`
}

// FinnhubMetrics carries the subset of /stock/metric the journal uses.
type FinnhubMetrics struct {
	AvgVolume10d *float64 `json:"10DayAverageTradingVolume"`
	Week52High   *float64 `json:"52WeekHigh"`
	Week52Low    *float64 `json:"52WeekLow"`
}

type FinnhubNewsArticle struct {
	Headline string `json:"headline"`
	Datetime int64  `json:"datetime"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

type FinnhubClient struct {
	apiKey string
	http   *resty.Client
}

func NewFinnhubClient(apiKey, baseURL string) *FinnhubClient {
	if baseURL == "" {
		baseURL = defaultFinnhubBaseURL
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}

	return &FinnhubClient{
		apiKey: apiKey,
		http:   newRestyClient(baseURL),
	}
}

func (c *FinnhubClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.apiKey).
		SetResult(out)

	for k, v := range params {
		req.SetQueryParam(k, v)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("finnhub %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("finnhub %s: unexpected status %d", path, resp.StatusCode())
	}
	return nil
}

func (c *FinnhubClient) Quote(ctx context.Context, ticker string) (*FinnhubQuote, error) {
	var quote FinnhubQuote
	if err := c.get(ctx, "/quote", map[string]string{"symbol": ticker}, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *FinnhubClient) Profile(ctx context.Context, ticker string) (*FinnhubProfile, error) {
	var profile FinnhubProfile
	if err := c.get(ctx, "/stock/profile2", map[string]string{"symbol": ticker}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *FinnhubClient) Metrics(ctx context.Context, ticker string) (*FinnhubMetrics, error) {
	var decoded finnhubMetricsResponse
	params := map[string]string{"symbol": ticker, "metric": "all"}
	if err := c.get(ctx, "/stock/metric", params, &decoded); err != nil {
		return nil, err
	}
	return &decoded.Metric, nil
}

// CompanyNews fetches ticker-focused articles for the given window, newest
// first.
func (c *FinnhubClient) CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]FinnhubNewsArticle, error) {
	var articles []FinnhubNewsArticle
	params := map[string]string{
		"symbol": ticker,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}
	if err := c.get(ctx, "/company-news", params, &articles); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"connector": "finnhub",
		"ticker":    ticker,
		"articles":  len(articles),
	}).Debug("Fetched company news")

	return articles, nil
}
