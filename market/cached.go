package market

import (
	"context"
	"errors"
	"log/slog"

	"portfolio-tracker/cache"
	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

// Cache is the subset of cache.PriceCache the provider wrapper uses.
type Cache interface {
	GetQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
	SetQuote(ctx context.Context, symbol string, price decimal.Decimal) error
	GetHistory(ctx context.Context, symbol string) ([]models.StockPrice, error)
	SetHistory(ctx context.Context, symbol string, prices []models.StockPrice) error
}

// Cached reads through a price cache in front of another Provider. Cache
// failures are logged and otherwise ignored.
type Cached struct {
	next  Provider
	cache Cache
	log   *slog.Logger
}

func NewCached(next Provider, c Cache, log *slog.Logger) *Cached {
	return &Cached{next: next, cache: c, log: log}
}

func (c *Cached) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := c.cache.GetQuote(ctx, symbol)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("price cache read failed", "symbol", symbol, "error", err)
	}

	price, err = c.next.Quote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.cache.SetQuote(ctx, symbol, price); err != nil {
		c.log.Warn("price cache write failed", "symbol", symbol, "error", err)
	}
	return price, nil
}

func (c *Cached) Daily(ctx context.Context, symbol string) ([]models.StockPrice, error) {
	prices, err := c.cache.GetHistory(ctx, symbol)
	if err == nil {
		return prices, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		c.log.Warn("history cache read failed", "symbol", symbol, "error", err)
	}

	prices, err = c.next.Daily(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetHistory(ctx, symbol, prices); err != nil {
		c.log.Warn("history cache write failed", "symbol", symbol, "error", err)
	}
	return prices, nil
}

var (
	_ Provider = (*Cached)(nil)
	_ Cache    = (*cache.PriceCache)(nil)
)
