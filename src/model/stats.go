package model

import "github.com/shopspring/decimal"

// TradeStats is a derived summary of the ledger, recomputed per request
// from the live trade set and never persisted.
type TradeStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	TotalPnl decimal.Decimal `json:"total_pnl"`

	TodaysPnl        decimal.Decimal `json:"todays_pnl"`
	TodaysTradeCount int             `json:"todays_trade_count"`

	ThisWeekPnl        decimal.Decimal `json:"this_week_pnl"`
	ThisWeekTradeCount int             `json:"this_week_trade_count"`

	AvgWin       decimal.Decimal `json:"avg_win"`
	AvgLoss      decimal.Decimal `json:"avg_loss"`
	ProfitFactor decimal.Decimal `json:"profit_factor"`
}
