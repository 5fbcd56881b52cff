package journal

import (
	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"tradejournal/src/model"
)

// grossPnl applies the standard short-selling convention: a LONG profits
// when price rises, a SHORT profits when price falls. The same convention
// is used on both the create and update paths.
func grossPnl(side string, quantity, entryPrice, exitPrice decimal.Decimal) decimal.Decimal {
	if side == model.SideShort {
		return entryPrice.Sub(exitPrice).Mul(quantity)
	}
	return exitPrice.Sub(entryPrice).Mul(quantity)
}

// riskReward computes reward/risk at entry. Undefined (nil) unless both the
// stop and the target are set and the risk leg is non-zero; a zero risk leg
// must never produce an Inf/NaN ratio.
func riskReward(entryPrice decimal.Decimal, stopLoss, target *decimal.Decimal) *decimal.Decimal {
	if stopLoss == nil || target == nil {
		return nil
	}

	risk := entryPrice.Sub(*stopLoss).Abs()
	if risk.IsZero() {
		logger.WithFields(map[string]interface{}{
			"entry_price": entryPrice.String(),
			"stop_loss":   stopLoss.String(),
		}).Warn("Degenerate risk leg, leaving risk/reward undefined")

		return nil
	}

	reward := target.Sub(entryPrice).Abs()
	ratio := reward.Div(risk)
	return &ratio
}
