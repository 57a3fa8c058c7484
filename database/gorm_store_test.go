package database

import (
	"context"
	"os"
	"testing"
	"time"

	"portfolio-tracker/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormStore opens PORTFOLIO_TEST_POSTGRES_DSN, migrates it and returns a
// store with a fresh portfolio, or skips.
func gormStore(t *testing.T) (*GormStore, models.Portfolio) {
	t.Helper()
	dsn := os.Getenv("PORTFOLIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PORTFOLIO_TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := NewGormStore(db)
	ctx := context.Background()
	u := models.User{Username: "Store Test", Email: uuid.NewString() + "@example.com"}
	require.NoError(t, s.CreateUser(ctx, &u))
	p := models.Portfolio{UserID: u.ID, Name: "Store Test"}
	require.NoError(t, s.CreatePortfolio(ctx, &p))
	t.Cleanup(func() { _ = s.DeleteUser(context.Background(), u.ID) })
	return s, p
}

func TestGormPutHoldingUpserts(t *testing.T) {
	s, p := gormStore(t)
	ctx := context.Background()

	first := models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(10),
		AverageCost: decimal.NewFromInt(100), CurrentPrice: decimal.NewFromInt(100)}
	require.NoError(t, s.PutHolding(ctx, &first))
	require.NotZero(t, first.ID)

	// A row without an ID conflicts on (portfolio_id, symbol) and updates.
	second := models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(4),
		AverageCost: decimal.RequireFromString("101.12345678"), CurrentPrice: decimal.NewFromInt(110)}
	require.NoError(t, s.PutHolding(ctx, &second))

	holdings, err := s.ListHoldings(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, first.ID, holdings[0].ID)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, holdings[0].AverageCost.Equal(decimal.RequireFromString("101.12345678")))

	require.NoError(t, s.DeleteHolding(ctx, p.ID, "AAPL"))
	_, err = s.GetHolding(ctx, p.ID, "AAPL")
	require.ErrorIs(t, err, ErrNotFound)

	// Holdings are hard-deleted, so the unique index does not block a re-insert.
	again := models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(1),
		AverageCost: decimal.NewFromInt(90), CurrentPrice: decimal.NewFromInt(90)}
	require.NoError(t, s.PutHolding(ctx, &again))
	got, err := s.GetHolding(ctx, p.ID, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, again.ID, got.ID)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(1)))

	require.NoError(t, s.DeleteHolding(ctx, p.ID, "AAPL"))
	require.NoError(t, s.DeleteHolding(ctx, p.ID, "AAPL"))
}

func TestGormGetHoldingLocksInsideAtomic(t *testing.T) {
	s, p := gormStore(t)
	ctx := context.Background()

	h := models.Holding{PortfolioID: p.ID, Symbol: "MSFT", Quantity: decimal.NewFromInt(1),
		AverageCost: decimal.NewFromInt(300), CurrentPrice: decimal.NewFromInt(300)}
	require.NoError(t, s.PutHolding(ctx, &h))

	locked := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Atomic(ctx, func(st Store) error {
			held, err := st.GetHolding(ctx, p.ID, "MSFT")
			if err != nil {
				close(locked)
				return err
			}
			close(locked)
			time.Sleep(200 * time.Millisecond)
			held.Quantity = held.Quantity.Add(decimal.NewFromInt(6))
			return st.PutHolding(ctx, &held)
		})
	}()

	<-locked
	var seen models.Holding
	require.NoError(t, s.Atomic(ctx, func(st Store) error {
		var err error
		seen, err = st.GetHolding(ctx, p.ID, "MSFT")
		return err
	}))
	require.NoError(t, <-done)

	// The second read waited for the first transaction to commit.
	assert.True(t, seen.Quantity.Equal(decimal.NewFromInt(7)), "got %s", seen.Quantity)
}

func TestGormListSymbolTransactionsOrder(t *testing.T) {
	s, p := gormStore(t)
	ctx := context.Background()

	a := models.Account{PortfolioID: p.ID, Name: "Brokerage", AccountType: models.AccountStocks}
	require.NoError(t, s.CreateAccount(ctx, &a))

	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	late := trade(a.ID, models.TransactionBuy, "AAPL", 1, day.Add(time.Hour))
	early := trade(a.ID, models.TransactionBuy, "AAPL", 2, day)
	tie := trade(a.ID, models.TransactionSell, "AAPL", 1, day)
	cash := trade(a.ID, models.TransactionDeposit, "", 1, day)
	for _, tx := range []*models.Transaction{late, early, tie, cash} {
		tx.TotalAmount = tx.Quantity.Mul(tx.Price)
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}

	got, err := s.ListSymbolTransactions(ctx, p.ID, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint{early.ID, tie.ID, late.ID}, []uint{got[0].ID, got[1].ID, got[2].ID})
}
