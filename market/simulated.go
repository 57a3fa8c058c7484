package market

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

const simulatedDays = 30

// Simulated makes up prices between 50 and 500 for any symbol. It stands in
// for a real feed in development.
type Simulated struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

func (s *Simulated) price() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	whole := 50 + s.rnd.Intn(450)
	return decimal.NewFromInt(int64(whole)).Add(decimal.NewFromFloat(s.rnd.Float64())).Round(2)
}

func (s *Simulated) Quote(ctx context.Context, _ string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	return s.price(), nil
}

// Daily returns one close per day for the last 30 days, oldest first.
func (s *Simulated) Daily(ctx context.Context, symbol string) ([]models.StockPrice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	prices := make([]models.StockPrice, 0, simulatedDays)
	for i := simulatedDays - 1; i >= 0; i-- {
		prices = append(prices, models.StockPrice{
			Symbol:    symbol,
			Price:     s.price(),
			Timestamp: today.AddDate(0, 0, -i),
		})
	}
	return prices, nil
}

var _ Provider = (*Simulated)(nil)
