package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-tracker/models"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// PriceCache stores the latest quote of a symbol under "stock:<symbol>:price"
// and its daily closes under "stock:<symbol>:history".
type PriceCache struct {
	rdb        *redis.Client
	ttl        time.Duration
	historyTTL time.Duration
}

func NewPriceCache(rdb *redis.Client, ttl, historyTTL time.Duration) *PriceCache {
	return &PriceCache{rdb: rdb, ttl: ttl, historyTTL: historyTTL}
}

func priceKey(symbol string) string {
	return fmt.Sprintf("stock:%s:price", symbol)
}

func historyKey(symbol string) string {
	return fmt.Sprintf("stock:%s:history", symbol)
}

// GetQuote returns ErrMiss when the symbol is not cached.
func (c *PriceCache) GetQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	raw, err := c.rdb.Get(ctx, priceKey(symbol)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, ErrMiss
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis: get price %s: %w", symbol, err)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis: parse price %s: %w", symbol, err)
	}
	return price, nil
}

func (c *PriceCache) SetQuote(ctx context.Context, symbol string, price decimal.Decimal) error {
	if err := c.rdb.Set(ctx, priceKey(symbol), price.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set price %s: %w", symbol, err)
	}
	return nil
}

// GetQuotes reads several symbols in one pipeline. Missing symbols are left
// out of the result.
func (c *PriceCache) GetQuotes(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(symbols))
	for _, s := range symbols {
		cmds[s] = pipe.Get(ctx, priceKey(s))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get prices pipeline: %w", err)
	}

	for s, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			continue
		}
		if price, err := decimal.NewFromString(raw); err == nil {
			out[s] = price
		}
	}
	return out, nil
}

func (c *PriceCache) GetHistory(ctx context.Context, symbol string) ([]models.StockPrice, error) {
	raw, err := c.rdb.Get(ctx, historyKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get history %s: %w", symbol, err)
	}
	var prices []models.StockPrice
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, fmt.Errorf("redis: decode history %s: %w", symbol, err)
	}
	return prices, nil
}

func (c *PriceCache) SetHistory(ctx context.Context, symbol string, prices []models.StockPrice) error {
	raw, err := json.Marshal(prices)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, historyKey(symbol), raw, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis: set history %s: %w", symbol, err)
	}
	return nil
}
