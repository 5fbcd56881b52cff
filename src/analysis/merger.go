package analysis

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"tradejournal/src/journal"
	"tradejournal/src/model"
)

type tradeLoader interface {
	FindByID(ctx context.Context, id, userID string) (*model.Trade, error)
}

type snapshotFetcher interface {
	Enrich(ctx context.Context, ticker string) (*model.MarketSnapshot, error)
}

// Analyzer reconciles a stored trade against a fresh market snapshot to
// answer "how would this trade be doing now". The operation is
// load-then-fetch-then-merge; after the trade loads it always produces a
// renderable result, falling back to the degraded view when the market
// data collaborator is unavailable.
type Analyzer struct {
	trades tradeLoader
	market snapshotFetcher
	now    func() time.Time
}

func NewAnalyzer(trades tradeLoader, market snapshotFetcher) *Analyzer {
	return &Analyzer{trades: trades, market: market, now: time.Now}
}

// Analyze loads the caller's trade and merges it with a current snapshot of
// its symbol. Fails only with ErrUnauthenticated or ErrNotFound; market
// data unavailability is recovered locally via the degraded path. No
// automatic retries: the caller may re-invoke.
func (a *Analyzer) Analyze(ctx context.Context, user *model.User, tradeID string) (*model.TradeAnalysis, error) {
	if user == nil {
		return nil, journal.ErrUnauthenticated
	}

	trade, err := a.trades.FindByID(ctx, tradeID, user.ID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, journal.ErrNotFound
	}

	snapshot, err := a.market.Enrich(ctx, trade.Symbol)
	if err != nil || snapshot == nil {
		logger.WithFields(map[string]interface{}{
			"trade_id": tradeID,
			"symbol":   trade.Symbol,
		}).WithError(err).Warn("Market data unavailable, returning degraded analysis")

		return a.degraded(trade), nil
	}

	return a.merge(trade, snapshot), nil
}

func (a *Analyzer) merge(trade *model.Trade, snapshot *model.MarketSnapshot) *model.TradeAnalysis {
	exitPrice := trade.ExitPrice.InexactFloat64()

	// A successful fetch should always carry a price; fall back to the
	// trade's exit price only when the snapshot omits it.
	currentPrice := trade.ExitPrice
	if snapshot.Price > 0 {
		currentPrice = decimal.NewFromFloat(snapshot.Price)
	}

	view := model.MarketView{
		Price:        currentPrice.InexactFloat64(),
		PrevClose:    coalesce(snapshot.PrevClose, exitPrice),
		Open:         coalesce(snapshot.Open, exitPrice),
		High:         coalesce(snapshot.High, exitPrice),
		Low:          coalesce(snapshot.Low, exitPrice),
		ChangePct:    snapshot.ChangePct,
		GapPct:       snapshot.GapPct,
		Volume:       snapshot.Volume,
		AvgVolume10d: snapshot.AvgVolume10d,
		FloatShares:  snapshot.FloatShares,
		MarketCap:    snapshot.MarketCap,
		Risk:         snapshot.Risk,
		Week52High:   snapshot.Week52High,
		Week52Low:    snapshot.Week52Low,
		DilutionPct:  snapshot.DilutionPct,
		News:         a.presentNews(trade.Symbol, snapshot.News),
		LatestFiling: a.presentFiling(trade.Symbol, snapshot.LatestFiling),
	}
	if view.Risk == "" {
		view.Risk = model.RiskUnknown
	}

	profitable := currentPrice.GreaterThan(trade.EntryPrice)
	if trade.Side == model.SideShort {
		profitable = currentPrice.LessThan(trade.EntryPrice)
	}

	return &model.TradeAnalysis{
		Trade:          trade,
		MarketAnalysis: view,
		PerformanceMetrics: model.PerformanceMetrics{
			CurrentPrice:          currentPrice,
			PerformanceSinceEntry: percentChange(currentPrice, trade.EntryPrice),
			PerformanceSinceExit:  percentChange(currentPrice, trade.ExitPrice),
			WouldBeProfitableNow:  profitable,
		},
	}
}

// degraded builds the fallback analysis entirely from the trade's exit
// price. The only signal that distinguishes "no data" from "zero
// performance" is the Unknown risk tier.
func (a *Analyzer) degraded(trade *model.Trade) *model.TradeAnalysis {
	exitPrice := trade.ExitPrice.InexactFloat64()

	return &model.TradeAnalysis{
		Trade: trade,
		MarketAnalysis: model.MarketView{
			Price:        exitPrice,
			PrevClose:    exitPrice,
			Open:         exitPrice,
			High:         exitPrice,
			Low:          exitPrice,
			Risk:         model.RiskUnknown,
			News:         []model.NewsItem{},
			LatestFiling: nil,
		},
		PerformanceMetrics: model.PerformanceMetrics{
			CurrentPrice:          trade.ExitPrice,
			PerformanceSinceEntry: decimal.Zero,
			PerformanceSinceExit:  decimal.Zero,
			WouldBeProfitableNow:  false,
		},
	}
}

// presentNews wraps raw headlines with a synthesized source label and a
// relative-time placeholder. Headline text passes through verbatim; only
// empty headlines get a generic stand-in.
func (a *Analyzer) presentNews(symbol string, headlines []string) []model.NewsItem {
	items := make([]model.NewsItem, 0, len(headlines))
	for i, headline := range headlines {
		if headline == "" {
			headline = fmt.Sprintf("%s market update", symbol)
		}
		items = append(items, model.NewsItem{
			Headline: headline,
			URL:      fmt.Sprintf("https://finance.yahoo.com/quote/%s/news/", symbol),
			Source:   "Financial News",
			Time:     fmt.Sprintf("%d hours ago", i+1),
		})
	}
	return items
}

func (a *Analyzer) presentFiling(symbol, formType string) *model.FilingRef {
	if formType == "" {
		return nil
	}
	return &model.FilingRef{
		Title: fmt.Sprintf("Recent %s filing for %s", formType, symbol),
		URL:   fmt.Sprintf("https://www.sec.gov/cgi-bin/browse-edgar?CIK=%s&action=getcompany", symbol),
		Type:  formType,
		Date:  a.now().Format("2006-01-02"),
	}
}

// percentChange computes (current-base)/base*100 rounded to two decimals.
func percentChange(current, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return current.Sub(base).Div(base).Mul(hundred).Round(2)
}

func coalesce(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
