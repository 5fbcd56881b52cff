package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/src/model"
)

// Compute folds a trade projection set into summary statistics. It is a
// pure function of the projections and the reference time; "today" is the
// calendar day of now in now's location, "this week" is a trailing
// now-7d window.
func Compute(projections []model.TradeProjection, now time.Time) model.TradeStats {
	stats := model.TradeStats{
		TotalTrades:  len(projections),
		TotalPnl:     decimal.Zero,
		TodaysPnl:    decimal.Zero,
		ThisWeekPnl:  decimal.Zero,
		AvgWin:       decimal.Zero,
		AvgLoss:      decimal.Zero,
		ProfitFactor: decimal.Zero,
	}

	loc := now.Location()
	year, month, day := now.Date()
	weekAgo := now.AddDate(0, 0, -7)

	grossProfit := decimal.Zero
	grossLoss := decimal.Zero

	for _, p := range projections {
		stats.TotalPnl = stats.TotalPnl.Add(p.NetPnl)

		switch {
		case p.NetPnl.IsPositive():
			stats.WinningTrades++
			grossProfit = grossProfit.Add(p.NetPnl)
		case p.NetPnl.IsNegative():
			stats.LosingTrades++
			grossLoss = grossLoss.Add(p.NetPnl)
		}
		// Trades with exactly zero net P&L count toward the total only.

		createdAt := p.CreatedAt.In(loc)
		cy, cm, cd := createdAt.Date()
		if cy == year && cm == month && cd == day {
			stats.TodaysPnl = stats.TodaysPnl.Add(p.NetPnl)
			stats.TodaysTradeCount++
		}

		if !p.CreatedAt.Before(weekAgo) {
			stats.ThisWeekPnl = stats.ThisWeekPnl.Add(p.NetPnl)
			stats.ThisWeekTradeCount++
		}
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	}

	if stats.WinningTrades > 0 {
		stats.AvgWin = grossProfit.Div(decimal.NewFromInt(int64(stats.WinningTrades)))
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(stats.LosingTrades)))
	}
	if grossLoss.IsNegative() {
		stats.ProfitFactor = grossProfit.Div(grossLoss.Abs())
	}

	return stats
}
