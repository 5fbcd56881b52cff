// REST API CLIENT FOR THE SEC FULL-TEXT FILING SEARCH
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const defaultSECBaseURL = "https://api.sec-api.io"

// SECFiling is one registration filing row. Share counts may be absent in
// the upstream payload; nil means "not reported".
type SECFiling struct {
	FormType                  string   `json:"formType"`
	FilingDate                string   `json:"filingDate"`
	MaximumSharesToBeOffered  *float64 `json:"maximumSharesToBeOffered"`
	TotalSharesPreviouslySold *float64 `json:"totalSharesPreviouslySold"`
}

type secSearchResponse struct {
	Filings []SECFiling `json:"filings"`
}

type SECClient struct {
	token string
	http  *resty.Client
}

func NewSECClient(token, baseURL string) *SECClient {
	if baseURL == "" {
		baseURL = defaultSECBaseURL
		logger.Warnf("No base URL provided, using default: %s", baseURL)
	}

	return &SECClient{
		token: token,
		http:  newRestyClient(baseURL),
	}
}

// DilutionFilings returns the latest dilution-related registrations
// (S-1, S-3, 424B5) for the ticker, newest first, capped at five.
func (c *SECClient) DilutionFilings(ctx context.Context, ticker string) ([]SECFiling, error) {
	query := fmt.Sprintf(
		"entityTicker:%s AND formType:(S-1 OR S-3 OR 424B5) sort:filingDate:desc",
		ticker,
	)

	var decoded secSearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetQueryParam("query", query).
		SetResult(&decoded).
		Get("/")
	if err != nil {
		return nil, fmt.Errorf("sec filings search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sec filings search: unexpected status %d", resp.StatusCode())
	}

	filings := decoded.Filings
	if len(filings) > 5 {
		filings = filings[:5]
	}

	logger.WithFields(map[string]interface{}{
		"connector": "sec",
		"ticker":    ticker,
		"filings":   len(filings),
	}).Debug("Fetched dilution filings")

	return filings, nil
}
