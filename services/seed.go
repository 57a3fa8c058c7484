package services

import (
	"context"
	"fmt"
	"time"

	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

type seedTrade struct {
	typ    models.TransactionType
	symbol string
	qty    string
	price  string
	months int
	notes  string
}

var seedTrades = []seedTrade{
	{models.TransactionDeposit, "", "1", "25000", 6, "Initial funding"},
	{models.TransactionBuy, "AAPL", "50", "145.50", 5, "Initial Apple investment"},
	{models.TransactionBuy, "MSFT", "30", "310.25", 4, "Microsoft investment"},
	{models.TransactionBuy, "GOOGL", "20", "135.75", 3, "Google investment"},
	{models.TransactionBuy, "AAPL", "25", "152.30", 2, "Additional Apple shares"},
	{models.TransactionSell, "GOOGL", "5", "142.80", 1, "Partial profit taking on Google"},
}

var seedPrices = map[string]decimal.Decimal{
	"AAPL":  decimal.RequireFromString("175.50"),
	"MSFT":  decimal.RequireFromString("380.25"),
	"GOOGL": decimal.RequireFromString("142.80"),
}

// Seed loads a sample user with one portfolio when the store has no users.
// Holdings come from replaying the sample trades through the ledger.
func (s *Services) Seed(ctx context.Context) error {
	users, err := s.Users.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	user, err := s.Users.Create(ctx, models.CreateUserRequest{Name: "Rani Investor", Email: "rani.investor@example.com"})
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	portfolio, err := s.Portfolios.Create(ctx, models.CreatePortfolioRequest{
		Name:        "Retirement Portfolio",
		Description: "Long-term retirement savings",
		UserID:      user.ID,
	})
	if err != nil {
		return fmt.Errorf("seed portfolio: %w", err)
	}
	account, err := s.Accounts.Create(ctx, models.CreateAccountRequest{
		Name:        "Stock Investments",
		AccountType: string(models.AccountStocks),
		PortfolioID: portfolio.ID,
	})
	if err != nil {
		return fmt.Errorf("seed account: %w", err)
	}

	now := time.Now().UTC()
	for _, t := range seedTrades {
		date := now.AddDate(0, -t.months, 0)
		if _, err := s.Transactions.Create(ctx, models.CreateTransactionRequest{
			AccountID:       account.ID,
			TransactionType: string(t.typ),
			Symbol:          t.symbol,
			Quantity:        decimal.RequireFromString(t.qty),
			Price:           decimal.RequireFromString(t.price),
			TransactionDate: &date,
			Notes:           t.notes,
		}); err != nil {
			return fmt.Errorf("seed %s %s: %w", t.typ, t.symbol, err)
		}
	}

	if _, err := s.Prices.UpdatePortfolio(ctx, portfolio.ID, seedPrices); err != nil {
		return fmt.Errorf("seed prices: %w", err)
	}
	return nil
}
