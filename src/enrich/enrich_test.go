package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/src/connectors"
	"tradejournal/src/model"
)

type mockQuoteSource struct {
	quote      *connectors.FinnhubQuote
	quoteErr   error
	profile    *connectors.FinnhubProfile
	profileErr error
	metrics    *connectors.FinnhubMetrics
	metricsErr error
	news       []connectors.FinnhubNewsArticle
	newsErr    error
}

func (m *mockQuoteSource) Quote(_ context.Context, _ string) (*connectors.FinnhubQuote, error) {
	return m.quote, m.quoteErr
}

func (m *mockQuoteSource) Profile(_ context.Context, _ string) (*connectors.FinnhubProfile, error) {
	return m.profile, m.profileErr
}

func (m *mockQuoteSource) Metrics(_ context.Context, _ string) (*connectors.FinnhubMetrics, error) {
	return m.metrics, m.metricsErr
}

func (m *mockQuoteSource) CompanyNews(_ context.Context, _ string, _, _ time.Time) ([]connectors.FinnhubNewsArticle, error) {
	return m.news, m.newsErr
}

type mockFilingSource struct {
	filings []connectors.SECFiling
	err     error
}

func (m *mockFilingSource) DilutionFilings(_ context.Context, _ string) ([]connectors.SECFiling, error) {
	return m.filings, m.err
}

func f64(v float64) *float64 { return &v }

func newTestEnricher(quotes *mockQuoteSource, filings *mockFilingSource) *Enricher {
	e := NewEnricher(quotes, filings)
	e.now = func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func TestEnrichQuoteFailureFailsOperation(t *testing.T) {
	quotes := &mockQuoteSource{quoteErr: errors.New("rate limited")}
	enricher := newTestEnricher(quotes, &mockFilingSource{})

	_, err := enricher.Enrich(context.Background(), "aapl")
	require.Error(t, err)
}

func TestEnrichBestEffortCollaborators(t *testing.T) {
	quotes := &mockQuoteSource{
		quote:      &connectors.FinnhubQuote{Current: 10.50, PrevClose: 10.00},
		profileErr: errors.New("profile down"),
		metricsErr: errors.New("metrics down"),
		newsErr:    errors.New("news down"),
	}
	filings := &mockFilingSource{err: errors.New("sec down")}
	enricher := newTestEnricher(quotes, filings)

	snapshot, err := enricher.Enrich(context.Background(), " aapl ")
	require.NoError(t, err, "only the quote call is load-bearing")

	assert.Equal(t, "AAPL", snapshot.Ticker)
	assert.InDelta(t, 10.50, snapshot.Price, 1e-9)
	assert.InDelta(t, 5.0, snapshot.GapPct, 1e-9)
	assert.InDelta(t, 5.0, snapshot.ChangePct, 1e-9, "change falls back to gap when upstream omits dp")
	assert.Equal(t, model.RiskUnknown, snapshot.Risk)
	assert.NotNil(t, snapshot.News)
	assert.Empty(t, snapshot.News)
}

func TestDilutionRiskTiers(t *testing.T) {
	cases := []struct {
		name        string
		floatShares float64
		registered  float64
		sold        float64
		want        string
	}{
		{"no float data", 0, 1000, 0, model.RiskUnknown},
		{"over half of float", 100, 60, 0, model.RiskHigh},
		{"over a fifth of float", 100, 30, 0, model.RiskMedium},
		{"small remainder", 100, 10, 0, model.RiskLow},
		{"sold shares reduce remainder", 100, 60, 45, model.RiskLow},
		{"exactly half is medium", 100, 50, 0, model.RiskMedium},
		{"exactly a fifth is low", 100, 20, 0, model.RiskLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filings := []connectors.SECFiling{{
				FormType:                  "S-3",
				MaximumSharesToBeOffered:  f64(tc.registered),
				TotalSharesPreviouslySold: f64(tc.sold),
			}}
			risk, _, _ := dilutionMetrics(filings, tc.floatShares)
			assert.Equal(t, tc.want, risk)
		})
	}
}

func TestDilutionRemainderNeverNegative(t *testing.T) {
	filings := []connectors.SECFiling{{
		MaximumSharesToBeOffered:  f64(10),
		TotalSharesPreviouslySold: f64(50),
	}}

	risk, remaining, _ := dilutionMetrics(filings, 100)
	assert.Equal(t, model.RiskLow, risk)
	assert.InDelta(t, 0.0, remaining, 1e-9)
}

func TestEnrichDilutionSnapshotFields(t *testing.T) {
	quotes := &mockQuoteSource{
		quote:   &connectors.FinnhubQuote{Current: 5.00, PrevClose: 5.00},
		profile: &connectors.FinnhubProfile{ShareOutstanding: 100},
	}
	filings := &mockFilingSource{filings: []connectors.SECFiling{
		{FormType: "424B5", MaximumSharesToBeOffered: f64(60)},
		{FormType: "S-1", MaximumSharesToBeOffered: f64(10)},
	}}
	enricher := newTestEnricher(quotes, filings)

	snapshot, err := enricher.Enrich(context.Background(), "XYZ")
	require.NoError(t, err)

	assert.Equal(t, model.RiskHigh, snapshot.Risk)
	assert.InDelta(t, 70.0, snapshot.DilutionRemaining, 1e-9)
	require.NotNil(t, snapshot.DilutionPct)
	assert.InDelta(t, 70.0, *snapshot.DilutionPct, 1e-9)
	assert.Equal(t, "424B5", snapshot.LatestFiling, "newest filing wins")
}

func TestTopHeadlines(t *testing.T) {
	quotes := &mockQuoteSource{
		quote: &connectors.FinnhubQuote{Current: 1},
		news: []connectors.FinnhubNewsArticle{
			{Headline: "oldest", Datetime: 100},
			{Headline: "", Datetime: 500},
			{Headline: "newest", Datetime: 400},
			{Headline: "second", Datetime: 300},
			{Headline: "third", Datetime: 200},
		},
	}
	enricher := newTestEnricher(quotes, &mockFilingSource{})

	snapshot, err := enricher.Enrich(context.Background(), "AAPL")
	require.NoError(t, err)

	// Newest first, empty headlines skipped, capped at three.
	assert.Equal(t, []string{"newest", "second", "third"}, snapshot.News)
}
