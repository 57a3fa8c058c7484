package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,min=3,max=50"`
	Email string `json:"email" binding:"required,email"`
}

type CreatePortfolioRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
	UserID      uint   `json:"userId" binding:"required"`
}

type UpdatePortfolioRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type CreateAccountRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	AccountType string `json:"accountType" binding:"required,oneof=Stocks Bonds Cash Crypto"`
	PortfolioID uint   `json:"portfolioId" binding:"required"`
}

// CreateTransactionRequest carries decimals, which the binding tags cannot
// range-check; the transaction service validates them.
type CreateTransactionRequest struct {
	AccountID       uint            `json:"accountId" binding:"required"`
	TransactionType string          `json:"transactionType" binding:"required"`
	Symbol          string          `json:"symbol" binding:"max=10"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TransactionDate *time.Time      `json:"transactionDate"`
	Notes           string          `json:"notes" binding:"max=500"`
}

type UpdatePriceRequest struct {
	NewPrice decimal.Decimal `json:"newPrice"`
}

type UpdatePortfolioPricesRequest struct {
	SymbolPrices map[string]decimal.Decimal `json:"symbolPrices" binding:"required"`
}

type FetchPricesRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1,max=50,dive,required,max=10"`
}

// TransactionFilter narrows a portfolio's transaction history. Zero values
// mean no bound.
type TransactionFilter struct {
	Start *time.Time
	End   *time.Time
	Type  TransactionType
}
