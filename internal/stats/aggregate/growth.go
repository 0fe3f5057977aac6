// Package aggregate turns order rows into statistics. Every function here is
// pure: callers pass the orders and the reference instant of the run.
package aggregate

import (
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/stats/domain"
	"github.com/smallbiznis/tapledger/internal/stats/window"
)

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// Growth returns the percentage change from previous to current rounded to
// two decimals, or nil when previous is zero or negative.
func Growth(current, previous decimal.Decimal) *float64 {
	if !previous.IsPositive() {
		return nil
	}
	pct := current.Sub(previous).
		Div(previous).
		Mul(tenThousand).
		Round(0).
		Div(hundred).
		InexactFloat64()
	return &pct
}

// CommunityGrowth compares total personal consumption of the current rolling
// window with the previous one. Event orders are not counted.
func CommunityGrowth(orders []orderdomain.Order, ref window.Reference, days int) domain.GrowthResponse {
	w := window.RollingWindows(ref, days)
	current := decimal.Zero
	previous := decimal.Zero
	for _, order := range orders {
		if !order.IsPersonal() {
			continue
		}
		switch {
		case w.Current.Contains(order.CreatedAt):
			current = current.Add(order.Volume())
		case w.Previous.Contains(order.CreatedAt):
			previous = previous.Add(order.Volume())
		}
	}
	return domain.GrowthResponse{
		Reference:      ref.Now,
		Current:        round2(current),
		Previous:       round2(previous),
		ChangePct:      Growth(current, previous),
		CurrentWindow:  w.Current,
		PreviousWindow: w.Previous,
	}
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
