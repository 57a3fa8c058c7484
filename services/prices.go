package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"portfolio-tracker/cache"
	"portfolio-tracker/database"
	"portfolio-tracker/market"
	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PriceService moves market prices into holdings. Prices never change
// quantity or average cost.
type PriceService struct {
	store       database.Store
	provider    market.Provider
	locks       cache.Locker
	lockTTL     time.Duration
	concurrency int
	log         *slog.Logger
	now         func() time.Time
}

func NewPriceService(store database.Store, provider market.Provider, locks cache.Locker, lockTTL time.Duration, concurrency int, log *slog.Logger) *PriceService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PriceService{
		store:       store,
		provider:    provider,
		locks:       locks,
		lockTTL:     lockTTL,
		concurrency: concurrency,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > 10 {
		return "", invalid("symbol must be between 1 and 10 characters")
	}
	return symbol, nil
}

// setPrice writes price into the holding of symbol, under the holding's lock.
func (s *PriceService) setPrice(ctx context.Context, portfolioID uint, symbol string, price decimal.Decimal) (models.Holding, error) {
	unlock, err := s.locks.Acquire(ctx, cache.HoldingKey(portfolioID, symbol), s.lockTTL)
	if err != nil {
		return models.Holding{}, err
	}
	defer unlock()

	var out models.Holding
	err = s.store.Atomic(ctx, func(st database.Store) error {
		h, err := st.GetHolding(ctx, portfolioID, symbol)
		if err != nil {
			return err
		}
		h.CurrentPrice = price
		h.LastUpdated = s.now()
		if err := st.PutHolding(ctx, &h); err != nil {
			return err
		}
		out = h
		return nil
	})
	return out, err
}

func (s *PriceService) UpdateHolding(ctx context.Context, holdingID uint, price decimal.Decimal) (models.Holding, error) {
	if err := checkAmount("price", price); err != nil {
		return models.Holding{}, err
	}
	h, err := s.store.GetHoldingByID(ctx, holdingID)
	if err != nil {
		return models.Holding{}, err
	}
	updated, err := s.setPrice(ctx, h.PortfolioID, h.Symbol, price)
	if err != nil {
		return models.Holding{}, err
	}
	s.log.Info("holding price updated", "holding_id", holdingID, "symbol", h.Symbol, "price", price.String())
	return updated, nil
}

// UpdatePortfolio applies prices to the portfolio's holdings by symbol.
// Invalid prices and symbols not held are skipped. It returns the number
// of holdings updated.
func (s *PriceService) UpdatePortfolio(ctx context.Context, portfolioID uint, prices map[string]decimal.Decimal) (int, error) {
	p, err := s.store.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return 0, err
	}

	bySymbol := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		bySymbol[strings.ToUpper(strings.TrimSpace(symbol))] = price
	}

	updated := 0
	for _, h := range p.Holdings {
		price, ok := bySymbol[h.Symbol]
		if !ok || checkAmount("price", price) != nil {
			continue
		}
		if _, err := s.setPrice(ctx, portfolioID, h.Symbol, price); err != nil {
			return updated, err
		}
		updated++
	}
	s.log.Info("portfolio prices updated", "portfolio_id", portfolioID, "count", updated)
	return updated, nil
}

// Fetch quotes every symbol concurrently. Any failed quote fails the call.
func (s *PriceService) Fetch(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	normalized := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		n, err := normalizeSymbol(symbol)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, n)
	}
	normalized = uniqueSorted(normalized)

	var (
		mu     sync.Mutex
		prices = make(map[string]decimal.Decimal, len(normalized))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, symbol := range normalized {
		symbol := symbol
		g.Go(func() error {
			price, err := s.provider.Quote(gctx, symbol)
			if err != nil {
				return err
			}
			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

// Quote returns the latest price of symbol and records it in the price
// history.
func (s *PriceService) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.store.SavePrices(ctx, []models.StockPrice{{Symbol: symbol, Price: price, Timestamp: s.now()}}); err != nil {
		s.log.Warn("price history write failed", "symbol", symbol, "error", err)
	}
	return price, nil
}

// History returns the daily closes of symbol, oldest first. Closes newer than
// the latest stored one are appended to the price history.
func (s *PriceService) History(ctx context.Context, symbol string) ([]models.StockPrice, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	prices, err := s.provider.Daily(ctx, symbol)
	if err != nil {
		return nil, err
	}

	latest, err := s.store.ListPrices(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	fresh := prices
	if len(latest) > 0 {
		fresh = fresh[:0:0]
		for _, p := range prices {
			if p.Timestamp.After(latest[0].Timestamp) {
				fresh = append(fresh, p)
			}
		}
	}
	if len(fresh) > 0 {
		rows := make([]models.StockPrice, 0, len(fresh))
		for _, p := range fresh {
			rows = append(rows, models.StockPrice{Symbol: symbol, Price: p.Price, Timestamp: p.Timestamp})
		}
		if err := s.store.SavePrices(ctx, rows); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

// RefreshPortfolio quotes every symbol the portfolio holds and applies the
// prices.
func (s *PriceService) RefreshPortfolio(ctx context.Context, portfolioID uint) (map[string]decimal.Decimal, int, error) {
	holdings, err := s.store.ListHoldings(ctx, portfolioID)
	if err != nil {
		return nil, 0, err
	}
	if len(holdings) == 0 {
		if _, err := s.store.GetPortfolio(ctx, portfolioID); err != nil {
			return nil, 0, err
		}
		return map[string]decimal.Decimal{}, 0, nil
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	prices, err := s.Fetch(ctx, symbols)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.UpdatePortfolio(ctx, portfolioID, prices)
	return prices, n, err
}
