package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *MemoryStore) (models.User, models.Portfolio, models.Account) {
	t.Helper()
	ctx := context.Background()

	u := models.User{Username: "Test User", Email: "test@example.com"}
	require.NoError(t, s.CreateUser(ctx, &u))
	p := models.Portfolio{UserID: u.ID, Name: "Main"}
	require.NoError(t, s.CreatePortfolio(ctx, &p))
	a := models.Account{PortfolioID: p.ID, Name: "Brokerage", AccountType: models.AccountStocks}
	require.NoError(t, s.CreateAccount(ctx, &a))
	return u, p, a
}

func trade(accountID uint, typ models.TransactionType, symbol string, qty int64, at time.Time) *models.Transaction {
	return &models.Transaction{
		AccountID:       accountID,
		Type:            typ,
		Symbol:          symbol,
		Quantity:        decimal.NewFromInt(qty),
		Price:           decimal.NewFromInt(10),
		TransactionDate: at,
	}
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "One", Email: "dup@example.com"}))
	err := s.CreateUser(ctx, &models.User{Username: "Two", Email: "DUP@example.com"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMemoryStoreAtomicRollsBack(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, p, a := seedAccount(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(st Store) error {
		require.NoError(t, st.CreateTransaction(ctx, trade(a.ID, models.TransactionBuy, "AAPL", 5, time.Now())))
		require.NoError(t, st.PutHolding(ctx, &models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(5)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	txs, err := s.ListAccountTransactions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
	_, err = s.GetHolding(ctx, p.ID, "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAtomicCommits(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, p, _ := seedAccount(t, s)

	require.NoError(t, s.Atomic(ctx, func(st Store) error {
		return st.PutHolding(ctx, &models.Holding{PortfolioID: p.ID, Symbol: "MSFT", Quantity: decimal.NewFromInt(1)})
	}))

	h, err := s.GetHolding(ctx, p.ID, "MSFT")
	require.NoError(t, err)
	assert.True(t, h.Quantity.Equal(decimal.NewFromInt(1)))
}

func TestMemoryStorePutHoldingUpserts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, p, _ := seedAccount(t, s)

	first := models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(1)}
	require.NoError(t, s.PutHolding(ctx, &first))
	second := models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(3)}
	require.NoError(t, s.PutHolding(ctx, &second))

	assert.Equal(t, first.ID, second.ID)
	holdings, err := s.ListHoldings(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestMemoryStoreTransactionOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, p, a := seedAccount(t, s)

	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	late := trade(a.ID, models.TransactionBuy, "AAPL", 1, day.Add(time.Hour))
	early := trade(a.ID, models.TransactionBuy, "AAPL", 2, day)
	tie := trade(a.ID, models.TransactionSell, "AAPL", 1, day)
	other := trade(a.ID, models.TransactionBuy, "MSFT", 4, day)
	cash := trade(a.ID, models.TransactionDeposit, "", 1, day)
	for _, tx := range []*models.Transaction{late, early, tie, other, cash} {
		require.NoError(t, s.CreateTransaction(ctx, tx))
	}

	replay, err := s.ListSymbolTransactions(ctx, p.ID, "AAPL")
	require.NoError(t, err)
	require.Len(t, replay, 3)
	assert.Equal(t, []uint{early.ID, tie.ID, late.ID}, []uint{replay[0].ID, replay[1].ID, replay[2].ID})

	all, err := s.ListAccountTransactions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, late.ID, all[0].ID)
	assert.Equal(t, early.ID, all[len(all)-1].ID)
}

func TestMemoryStorePortfolioFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, p, a := seedAccount(t, s)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateTransaction(ctx, trade(a.ID, models.TransactionBuy, "AAPL", 1, day)))
	require.NoError(t, s.CreateTransaction(ctx, trade(a.ID, models.TransactionSell, "AAPL", 1, day.AddDate(0, 0, 5))))
	require.NoError(t, s.CreateTransaction(ctx, trade(a.ID, models.TransactionDeposit, "", 1, day.AddDate(0, 0, 10))))

	start := day.AddDate(0, 0, 1)
	got, err := s.ListPortfolioTransactions(ctx, p.ID, models.TransactionFilter{Start: &start})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListPortfolioTransactions(ctx, p.ID, models.TransactionFilter{Type: models.TransactionSell})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].Account.ID)
}

func TestMemoryStoreCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u, p, a := seedAccount(t, s)

	tx := trade(a.ID, models.TransactionBuy, "AAPL", 1, time.Now())
	require.NoError(t, s.CreateTransaction(ctx, tx))
	require.NoError(t, s.PutHolding(ctx, &models.Holding{PortfolioID: p.ID, Symbol: "AAPL", Quantity: decimal.NewFromInt(1)}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	_, err := s.GetPortfolio(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetAccount(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetHolding(ctx, p.ID, "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTransactionNeedsAccount(t *testing.T) {
	s := NewMemoryStore()
	err := s.CreateTransaction(context.Background(), trade(99, models.TransactionBuy, "AAPL", 1, time.Now()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePricesNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SavePrices(ctx, []models.StockPrice{
		{Symbol: "AAPL", Price: decimal.NewFromInt(1), Timestamp: day},
		{Symbol: "AAPL", Price: decimal.NewFromInt(3), Timestamp: day.AddDate(0, 0, 2)},
		{Symbol: "MSFT", Price: decimal.NewFromInt(9), Timestamp: day.AddDate(0, 0, 5)},
		{Symbol: "AAPL", Price: decimal.NewFromInt(2), Timestamp: day.AddDate(0, 0, 1)},
	}))

	latest, err := s.ListPrices(ctx, "AAPL", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.True(t, latest[0].Price.Equal(decimal.NewFromInt(3)))

	all, err := s.ListPrices(ctx, "AAPL", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateInBatchesRejectsBadInput(t *testing.T) {
	assert.ErrorIs(t, CreateInBatches(nil, []models.StockPrice{}, 0), ErrInvalidBatchSize)
	assert.ErrorIs(t, CreateInBatches(nil, models.StockPrice{}, 10), ErrInvalidData)
	assert.NoError(t, CreateInBatches(nil, []models.StockPrice{}, 10))
}
