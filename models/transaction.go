package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is one ledger entry of an account. Rows are never edited,
// only created or deleted.
type Transaction struct {
	gorm.Model
	AccountID       uint            `gorm:"index;not null"`
	Type            TransactionType `gorm:"size:20;not null;index"`
	Symbol          string          `gorm:"size:10;index"`
	Quantity        decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Price           decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	TransactionDate time.Time       `gorm:"index;not null;default:CURRENT_TIMESTAMP"`
	Notes           string          `gorm:"size:500"`

	Account Account
}

// AffectsHolding reports whether the transaction moves a symbol position.
func (t Transaction) AffectsHolding() bool {
	return t.Type.IsTrade() && t.Symbol != ""
}
