package database

import (
	"context"
	"errors"

	"portfolio-tracker/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	// GetUser loads the user with its portfolios.
	GetUser(ctx context.Context, id uint) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// DeleteUser removes the user together with its portfolios.
	DeleteUser(ctx context.Context, id uint) error
}

type PortfolioStore interface {
	CreatePortfolio(ctx context.Context, p *models.Portfolio) error
	// GetPortfolio loads the portfolio with its accounts and holdings.
	GetPortfolio(ctx context.Context, id uint) (models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID uint) ([]models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, p *models.Portfolio) error
	// DeletePortfolio removes the portfolio, its accounts, their transactions
	// and its holdings.
	DeletePortfolio(ctx context.Context, id uint) error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	// GetAccount loads the account with its transactions.
	GetAccount(ctx context.Context, id uint) (models.Account, error)
	ListAccounts(ctx context.Context, portfolioID uint) ([]models.Account, error)
	// DeleteAccount removes the account and its transactions. Holdings are
	// left for the caller to rebuild.
	DeleteAccount(ctx context.Context, id uint) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	// GetTransaction loads the transaction with its account.
	GetTransaction(ctx context.Context, id uint) (models.Transaction, error)
	// ListAccountTransactions returns the account's ledger, newest first.
	ListAccountTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error)
	// ListPortfolioTransactions returns matching transactions of every account
	// in the portfolio, newest first, with their accounts loaded.
	ListPortfolioTransactions(ctx context.Context, portfolioID uint, filter models.TransactionFilter) ([]models.Transaction, error)
	// ListSymbolTransactions returns the Buy/Sell ledger of one symbol in
	// replay order: oldest first, ties by ID.
	ListSymbolTransactions(ctx context.Context, portfolioID uint, symbol string) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uint) error
}

type HoldingStore interface {
	// GetHolding returns ErrNotFound when the portfolio holds no symbol.
	// Inside Atomic the row stays locked until the transaction ends.
	GetHolding(ctx context.Context, portfolioID uint, symbol string) (models.Holding, error)
	GetHoldingByID(ctx context.Context, id uint) (models.Holding, error)
	ListHoldings(ctx context.Context, portfolioID uint) ([]models.Holding, error)
	// PutHolding inserts or replaces the holding keyed by portfolio and symbol.
	PutHolding(ctx context.Context, h *models.Holding) error
	DeleteHolding(ctx context.Context, portfolioID uint, symbol string) error
}

type PriceStore interface {
	SavePrices(ctx context.Context, prices []models.StockPrice) error
	ListPrices(ctx context.Context, symbol string, limit int) ([]models.StockPrice, error)
}

// Store is the ledger store used by the services.
type Store interface {
	UserStore
	PortfolioStore
	AccountStore
	TransactionStore
	HoldingStore
	PriceStore

	// Atomic runs fn against a Store bound to a single database transaction.
	// The transaction is rolled back when fn returns an error.
	Atomic(ctx context.Context, fn func(Store) error) error
}
