package model

import "github.com/shopspring/decimal"

// Dilution risk tiers assigned by the enrichment pipeline.
const (
	RiskHigh    = "High"
	RiskMedium  = "Medium"
	RiskLow     = "Low"
	RiskUnknown = "Unknown"
)

// MarketSnapshot is the strict internal shape of a point-in-time market
// quote. The upstream payload is loosely structured; the connectors package
// is the single coercion boundary that maps it into this type, defaulting
// absent fields instead of letting them propagate as missing values.
type MarketSnapshot struct {
	Ticker            string   `json:"ticker"`
	Price             float64  `json:"price"`
	PrevClose         float64  `json:"prev_close"`
	Open              float64  `json:"open"`
	High              float64  `json:"high"`
	Low               float64  `json:"low"`
	ChangePct         float64  `json:"change_pct"`
	GapPct            float64  `json:"gap_pct"`
	Volume            float64  `json:"volume"`
	AvgVolume10d      *float64 `json:"avg_volume_10d,omitempty"`
	FloatShares       float64  `json:"float_shares"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	Risk              string   `json:"risk"`
	Week52High        *float64 `json:"week_52_high,omitempty"`
	Week52Low         *float64 `json:"week_52_low,omitempty"`
	DilutionPct       *float64 `json:"dilution_pct_float,omitempty"`
	News              []string `json:"news"`
	LatestFiling      string   `json:"latest_filing,omitempty"`
	DilutionRemaining float64  `json:"dilution_remaining"`
}

// NewsItem is a headline dressed with presentation metadata. The headline
// text always comes from upstream verbatim; source, url and time are
// synthesized when upstream supplies none.
type NewsItem struct {
	Headline string `json:"headline"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Time     string `json:"time"`
}

type FilingRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
	Date  string `json:"date"`
}

// MarketView is the renderable form of a MarketSnapshot attached to a trade
// analysis: same quote fields, news expanded into items, filing into a ref.
type MarketView struct {
	Price        float64    `json:"price"`
	PrevClose    float64    `json:"prev_close"`
	Open         float64    `json:"open"`
	High         float64    `json:"high"`
	Low          float64    `json:"low"`
	ChangePct    float64    `json:"change_pct"`
	GapPct       float64    `json:"gap_pct"`
	Volume       float64    `json:"volume"`
	AvgVolume10d *float64   `json:"avg_volume_10d,omitempty"`
	FloatShares  float64    `json:"float_shares"`
	MarketCap    *float64   `json:"market_cap,omitempty"`
	Risk         string     `json:"risk"`
	Week52High   *float64   `json:"week_52_high,omitempty"`
	Week52Low    *float64   `json:"week_52_low,omitempty"`
	DilutionPct  *float64   `json:"dilution_pct_float,omitempty"`
	News         []NewsItem `json:"news"`
	LatestFiling *FilingRef `json:"latest_filing"`
}

type PerformanceMetrics struct {
	CurrentPrice          decimal.Decimal `json:"current_price"`
	PerformanceSinceEntry decimal.Decimal `json:"performance_since_entry"`
	PerformanceSinceExit  decimal.Decimal `json:"performance_since_exit"`
	WouldBeProfitableNow  bool            `json:"would_be_profitable_now"`
}

// TradeAnalysis joins a stored trade with a later market snapshot. Derived
// on demand, never persisted. Always fully populated: when the snapshot is
// unavailable the degraded view is built from the trade's exit price.
type TradeAnalysis struct {
	Trade              *Trade             `json:"trade"`
	MarketAnalysis     MarketView         `json:"market_analysis"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"`
}
