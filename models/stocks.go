package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockPrice is one observed quote, kept as price history.
type StockPrice struct {
	gorm.Model
	Symbol    string          `gorm:"size:10;index"`
	Price     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Timestamp time.Time       `gorm:"index"`
}
