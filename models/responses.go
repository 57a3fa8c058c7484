package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserResponse struct {
	ID         uint                `json:"id"`
	Username   string              `json:"userName"`
	Email      string              `json:"email"`
	CreatedAt  time.Time           `json:"createdAt"`
	Portfolios []PortfolioResponse `json:"portfolios"`
}

type PortfolioResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	UserID      uint              `json:"userId"`
	CreatedAt   time.Time         `json:"createdAt"`
	Accounts    []AccountResponse `json:"accounts"`
	Holdings    []HoldingResponse `json:"holdings"`
}

type AccountResponse struct {
	ID           uint                  `json:"id"`
	Name         string                `json:"name"`
	AccountType  AccountType           `json:"accountType"`
	PortfolioID  uint                  `json:"portfolioId"`
	CreatedAt    time.Time             `json:"createdAt"`
	Transactions []TransactionResponse `json:"transactions"`
}

type TransactionResponse struct {
	ID              uint            `json:"id"`
	AccountID       uint            `json:"accountId"`
	TransactionType TransactionType `json:"transactionType"`
	Symbol          string          `json:"symbol,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TransactionDate time.Time       `json:"transactionDate"`
	Notes           string          `json:"notes,omitempty"`
}

type HoldingResponse struct {
	ID                 uint            `json:"id"`
	PortfolioID        uint            `json:"portfolioId"`
	Symbol             string          `json:"symbol"`
	Quantity           decimal.Decimal `json:"quantity"`
	AverageCost        decimal.Decimal `json:"averageCost"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	TotalCost          decimal.Decimal `json:"totalCost"`
	CurrentValue       decimal.Decimal `json:"currentValue"`
	GainLoss           decimal.Decimal `json:"gainLoss"`
	GainLossPercentage decimal.Decimal `json:"gainLossPercentage"`
}

type PortfolioSummaryResponse struct {
	PortfolioID             uint             `json:"portfolioId"`
	PortfolioName           string           `json:"portfolioName"`
	TotalValue              decimal.Decimal  `json:"totalValue"`
	TotalCost               decimal.Decimal  `json:"totalCost"`
	TotalGainLoss           decimal.Decimal  `json:"totalGainLoss"`
	TotalGainLossPercentage decimal.Decimal  `json:"totalGainLossPercentage"`
	TotalHoldings           int              `json:"totalHoldings"`
	Holdings                []HoldingSummary `json:"holdings"`
}

type HoldingSummary struct {
	Symbol             string          `json:"symbol"`
	Quantity           decimal.Decimal `json:"quantity"`
	AverageCost        decimal.Decimal `json:"averageCost"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	CurrentValue       decimal.Decimal `json:"currentValue"`
	GainLoss           decimal.Decimal `json:"gainLoss"`
	GainLossPercentage decimal.Decimal `json:"gainLossPercentage"`
}

type PortfolioAnalyticsResponse struct {
	PortfolioID             uint               `json:"portfolioId"`
	PortfolioName           string             `json:"portfolioName"`
	TotalValue              decimal.Decimal    `json:"totalValue"`
	TotalCost               decimal.Decimal    `json:"totalCost"`
	TotalGainLoss           decimal.Decimal    `json:"totalGainLoss"`
	TotalGainLossPercentage decimal.Decimal    `json:"totalGainLossPercentage"`
	TotalReturnOnInvestment decimal.Decimal    `json:"totalReturnOnInvestment"`
	Performance             PerformanceMetrics `json:"performance"`
	Holdings                []HoldingAnalytics `json:"holdings"`
	AssetAllocations        []AssetAllocation  `json:"assetAllocations"`
	TopGainers              []TopPerformer     `json:"topGainers"`
	TopLosers               []TopPerformer     `json:"topLosers"`
}

type PerformanceMetrics struct {
	TotalInvested        decimal.Decimal `json:"totalInvested"`
	TotalWithdrawn       decimal.Decimal `json:"totalWithdrawn"`
	NetCashFlow          decimal.Decimal `json:"netCashFlow"`
	TotalTransactions    int             `json:"totalTransactions"`
	FirstTransactionDate *time.Time      `json:"firstTransactionDate"`
	LastTransactionDate  *time.Time      `json:"lastTransactionDate"`
	DaysActive           int             `json:"daysActive"`
}

type HoldingAnalytics struct {
	Symbol                    string          `json:"symbol"`
	Quantity                  decimal.Decimal `json:"quantity"`
	AverageCost               decimal.Decimal `json:"averageCost"`
	CurrentPrice              decimal.Decimal `json:"currentPrice"`
	TotalCost                 decimal.Decimal `json:"totalCost"`
	CurrentValue              decimal.Decimal `json:"currentValue"`
	GainLoss                  decimal.Decimal `json:"gainLoss"`
	GainLossPercentage        decimal.Decimal `json:"gainLossPercentage"`
	PortfolioWeightPercentage decimal.Decimal `json:"portfolioWeightPercentage"`
}

type AssetAllocation struct {
	AccountType   AccountType     `json:"accountType"`
	Value         decimal.Decimal `json:"value"`
	Percentage    decimal.Decimal `json:"percentage"`
	HoldingsCount int             `json:"holdingsCount"`
}

type TopPerformer struct {
	Symbol             string          `json:"symbol"`
	GainLoss           decimal.Decimal `json:"gainLoss"`
	GainLossPercentage decimal.Decimal `json:"gainLossPercentage"`
	CurrentValue       decimal.Decimal `json:"currentValue"`
}

type TransactionHistoryResponse struct {
	TotalTransactions int                      `json:"totalTransactions"`
	Transactions      []TransactionHistoryItem `json:"transactions"`
	Summary           TransactionSummary       `json:"summary"`
}

type TransactionHistoryItem struct {
	ID              uint            `json:"id"`
	TransactionDate time.Time       `json:"transactionDate"`
	TransactionType TransactionType `json:"transactionType"`
	Symbol          string          `json:"symbol,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AccountName     string          `json:"accountName"`
	Notes           string          `json:"notes,omitempty"`
}

type TransactionSummary struct {
	TotalBuys             int             `json:"totalBuys"`
	TotalSells            int             `json:"totalSells"`
	TotalDeposits         int             `json:"totalDeposits"`
	TotalWithdrawals      int             `json:"totalWithdrawals"`
	TotalBuyAmount        decimal.Decimal `json:"totalBuyAmount"`
	TotalSellAmount       decimal.Decimal `json:"totalSellAmount"`
	TotalDepositAmount    decimal.Decimal `json:"totalDepositAmount"`
	TotalWithdrawalAmount decimal.Decimal `json:"totalWithdrawalAmount"`
}

type QuoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

func NewUserResponse(u User) UserResponse {
	r := UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		Portfolios: make([]PortfolioResponse, 0, len(u.Portfolios)),
	}
	for _, p := range u.Portfolios {
		r.Portfolios = append(r.Portfolios, NewPortfolioResponse(p))
	}
	return r
}

func NewPortfolioResponse(p Portfolio) PortfolioResponse {
	r := PortfolioResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		Accounts:    make([]AccountResponse, 0, len(p.Accounts)),
		Holdings:    make([]HoldingResponse, 0, len(p.Holdings)),
	}
	for _, a := range p.Accounts {
		r.Accounts = append(r.Accounts, NewAccountResponse(a))
	}
	for _, h := range p.Holdings {
		r.Holdings = append(r.Holdings, NewHoldingResponse(h))
	}
	return r
}

func NewAccountResponse(a Account) AccountResponse {
	r := AccountResponse{
		ID:           a.ID,
		Name:         a.Name,
		AccountType:  a.AccountType,
		PortfolioID:  a.PortfolioID,
		CreatedAt:    a.CreatedAt,
		Transactions: make([]TransactionResponse, 0, len(a.Transactions)),
	}
	for _, t := range a.Transactions {
		r.Transactions = append(r.Transactions, NewTransactionResponse(t))
	}
	return r
}

func NewTransactionResponse(t Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		TransactionType: t.Type,
		Symbol:          t.Symbol,
		Quantity:        t.Quantity,
		Price:           t.Price,
		TotalAmount:     t.TotalAmount,
		TransactionDate: t.TransactionDate,
		Notes:           t.Notes,
	}
}

func NewTransactionResponses(txs []Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}

func NewHoldingResponse(h Holding) HoldingResponse {
	return HoldingResponse{
		ID:                 h.ID,
		PortfolioID:        h.PortfolioID,
		Symbol:             h.Symbol,
		Quantity:           h.Quantity,
		AverageCost:        h.AverageCost,
		CurrentPrice:       h.CurrentPrice,
		LastUpdated:        h.LastUpdated,
		TotalCost:          h.TotalCost(),
		CurrentValue:       h.CurrentValue(),
		GainLoss:           h.GainLoss(),
		GainLossPercentage: h.GainLossPercentage(),
	}
}

type PricePoint struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewPricePoints(prices []StockPrice) []PricePoint {
	out := make([]PricePoint, 0, len(prices))
	for _, p := range prices {
		out = append(out, PricePoint{Symbol: p.Symbol, Price: p.Price, Timestamp: p.Timestamp})
	}
	return out
}

type PriceUpdateResponse struct {
	UpdatedCount int                        `json:"updatedCount"`
	Prices       map[string]decimal.Decimal `json:"prices,omitempty"`
}
