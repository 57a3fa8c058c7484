package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Holding is the current position of one symbol in a portfolio. It is a
// projection of the transaction ledger and can always be rebuilt from it, so
// rows are hard-deleted when the position is closed.
type Holding struct {
	ID           uint            `gorm:"primarykey"`
	PortfolioID  uint            `gorm:"not null;uniqueIndex:idx_holdings_portfolio_symbol"`
	Symbol       string          `gorm:"size:10;not null;uniqueIndex:idx_holdings_portfolio_symbol"`
	Quantity     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	AverageCost  decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	LastUpdated  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (h Holding) TotalCost() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

func (h Holding) CurrentValue() decimal.Decimal {
	return h.Quantity.Mul(h.CurrentPrice)
}

func (h Holding) GainLoss() decimal.Decimal {
	return h.CurrentValue().Sub(h.TotalCost())
}

// GainLossPercentage is zero when nothing was paid for the position.
func (h Holding) GainLossPercentage() decimal.Decimal {
	cost := h.TotalCost()
	if !cost.IsPositive() {
		return decimal.Zero
	}
	return h.GainLoss().Div(cost).Mul(hundred)
}

// Percent returns part/total*100, or zero when total is not positive.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}
