package enrich

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/connectors"
	"tradejournal/src/model"
)

type quoteSource interface {
	Quote(ctx context.Context, ticker string) (*connectors.FinnhubQuote, error)
	Profile(ctx context.Context, ticker string) (*connectors.FinnhubProfile, error)
	Metrics(ctx context.Context, ticker string) (*connectors.FinnhubMetrics, error)
	CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]connectors.FinnhubNewsArticle, error)
}

type filingSource interface {
	DilutionFilings(ctx context.Context, ticker string) ([]connectors.SECFiling, error)
}

// Enricher assembles a MarketSnapshot for a ticker from the quote and
// filing collaborators. It is the single coercion boundary between their
// loosely-structured payloads and the strict internal snapshot shape:
// anything the upstream omits becomes a safe default here.
type Enricher struct {
	quotes  quoteSource
	filings filingSource
	now     func() time.Time
}

func NewEnricher(quotes quoteSource, filings filingSource) *Enricher {
	return &Enricher{quotes: quotes, filings: filings, now: time.Now}
}

// NewDefaultEnricher wires the production Finnhub and SEC clients from env
// configuration.
func NewDefaultEnricher() *Enricher {
	config := connectors.GetConfig()
	return NewEnricher(
		connectors.NewFinnhubClient(config.FinnhubAPIKey, config.FinnhubBaseURL),
		connectors.NewSECClient(config.SECAPIKey, config.SECBaseURL),
	)
}

// Enrich fetches a best-effort snapshot for the ticker. The quote call is
// load-bearing and fails the whole operation; profile, metrics, filings and
// news are best-effort and default to empty on error.
func (e *Enricher) Enrich(ctx context.Context, ticker string) (*model.MarketSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	quote, err := e.quotes.Quote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	snapshot := &model.MarketSnapshot{
		Ticker:    ticker,
		Price:     quote.Current,
		PrevClose: quote.PrevClose,
		Open:      quote.Open,
		High:      quote.High,
		Low:       quote.Low,
		Volume:    quote.Volume,
		Risk:      model.RiskUnknown,
		News:      []string{},
	}

	gapPct := 0.0
	if quote.PrevClose != 0 {
		gapPct = (quote.Current - quote.PrevClose) / quote.PrevClose * 100
	}
	snapshot.GapPct = round2(gapPct)

	if quote.ChangePct != 0 {
		snapshot.ChangePct = round2(quote.ChangePct)
	} else {
		snapshot.ChangePct = snapshot.GapPct
	}

	if profile, err := e.quotes.Profile(ctx, ticker); err != nil {
		logger.WithError(err).WithField("ticker", ticker).Warn("Profile fetch failed, continuing without float data")
	} else {
		snapshot.FloatShares = profile.ShareOutstanding
		snapshot.MarketCap = profile.MarketCapitalization
	}

	if metrics, err := e.quotes.Metrics(ctx, ticker); err != nil {
		logger.WithError(err).WithField("ticker", ticker).Warn("Metrics fetch failed, continuing without key metrics")
	} else {
		snapshot.AvgVolume10d = metrics.AvgVolume10d
		snapshot.Week52High = metrics.Week52High
		snapshot.Week52Low = metrics.Week52Low
	}

	filings, err := e.filings.DilutionFilings(ctx, ticker)
	if err != nil {
		logger.WithError(err).WithField("ticker", ticker).Warn("Filings fetch failed, continuing without dilution data")
		filings = nil
	}

	risk, remaining, pct := dilutionMetrics(filings, snapshot.FloatShares)
	snapshot.Risk = risk
	snapshot.DilutionRemaining = remaining
	if pct > 0 {
		pctOfFloat := round2(pct * 100)
		snapshot.DilutionPct = &pctOfFloat
	}
	if len(filings) > 0 {
		snapshot.LatestFiling = filings[0].FormType
	}

	snapshot.News = e.topHeadlines(ctx, ticker)

	return snapshot, nil
}

// dilutionMetrics estimates how much of the float is still registered for
// sale. Tiers follow the share of float still offerable: above half is
// High, above a fifth is Medium, anything else Low. No float data means the
// tier cannot be judged at all.
func dilutionMetrics(filings []connectors.SECFiling, floatShares float64) (string, float64, float64) {
	if floatShares <= 0 {
		return model.RiskUnknown, 0, 0
	}

	remaining := 0.0
	for _, filing := range filings {
		registered := 0.0
		if filing.MaximumSharesToBeOffered != nil {
			registered = *filing.MaximumSharesToBeOffered
		}
		sold := 0.0
		if filing.TotalSharesPreviouslySold != nil {
			sold = *filing.TotalSharesPreviouslySold
		}
		remaining += math.Max(registered-sold, 0)
	}

	pct := remaining / floatShares

	switch {
	case pct > 0.5:
		return model.RiskHigh, remaining, pct
	case pct > 0.2:
		return model.RiskMedium, remaining, pct
	default:
		return model.RiskLow, remaining, pct
	}
}

// topHeadlines returns up to three of the newest headlines from the last
// seven days. Best-effort: an upstream error yields an empty list.
func (e *Enricher) topHeadlines(ctx context.Context, ticker string) []string {
	to := e.now()
	from := to.AddDate(0, 0, -7)

	articles, err := e.quotes.CompanyNews(ctx, ticker, from, to)
	if err != nil {
		logger.WithError(err).WithField("ticker", ticker).Warn("News fetch failed, continuing without headlines")
		return []string{}
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Datetime > articles[j].Datetime
	})

	headlines := make([]string, 0, 3)
	for _, article := range articles {
		if article.Headline == "" {
			continue
		}
		headlines = append(headlines, article.Headline)
		if len(headlines) == 3 {
			break
		}
	}
	return headlines
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
