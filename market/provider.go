// Package market supplies stock quotes and daily price history.
package market

import (
	"context"
	"errors"

	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

var (
	ErrSymbolNotFound = errors.New("market: symbol not found")
	ErrUnavailable    = errors.New("market: quote provider unavailable")
)

// Provider returns the latest price of a symbol and its daily closing prices.
type Provider interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
	Daily(ctx context.Context, symbol string) ([]models.StockPrice, error)
}
