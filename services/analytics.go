package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"portfolio-tracker/database"
	"portfolio-tracker/models"

	"github.com/shopspring/decimal"
)

const topPerformers = 5

type AnalyticsService struct {
	store database.Store
	log   *slog.Logger
}

func NewAnalyticsService(store database.Store, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, log: log}
}

// Portfolio builds the full analytics report of a portfolio.
func (s *AnalyticsService) Portfolio(ctx context.Context, id uint) (models.PortfolioAnalyticsResponse, error) {
	p, err := s.store.GetPortfolio(ctx, id)
	if err != nil {
		return models.PortfolioAnalyticsResponse{}, err
	}
	txs, err := s.store.ListPortfolioTransactions(ctx, id, models.TransactionFilter{})
	if err != nil {
		return models.PortfolioAnalyticsResponse{}, err
	}

	totalValue, totalCost := decimal.Zero, decimal.Zero
	for _, h := range p.Holdings {
		totalValue = totalValue.Add(h.CurrentValue())
		totalCost = totalCost.Add(h.TotalCost())
	}
	totalGainLoss := totalValue.Sub(totalCost)

	perf := performance(txs)

	holdings := make([]models.HoldingAnalytics, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, models.HoldingAnalytics{
			Symbol:                    h.Symbol,
			Quantity:                  h.Quantity,
			AverageCost:               h.AverageCost,
			CurrentPrice:              h.CurrentPrice,
			TotalCost:                 h.TotalCost(),
			CurrentValue:              h.CurrentValue(),
			GainLoss:                  h.GainLoss(),
			GainLossPercentage:        h.GainLossPercentage(),
			PortfolioWeightPercentage: models.Percent(h.CurrentValue(), totalValue),
		})
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].CurrentValue.GreaterThan(holdings[j].CurrentValue)
	})

	return models.PortfolioAnalyticsResponse{
		PortfolioID:             p.ID,
		PortfolioName:           p.Name,
		TotalValue:              totalValue,
		TotalCost:               totalCost,
		TotalGainLoss:           totalGainLoss,
		TotalGainLossPercentage: models.Percent(totalGainLoss, totalCost),
		TotalReturnOnInvestment: models.Percent(totalGainLoss, perf.TotalInvested),
		Performance:             perf,
		Holdings:                holdings,
		AssetAllocations:        allocations(p, txs, totalValue),
		TopGainers:              top(holdings, func(h models.HoldingAnalytics) bool { return h.GainLoss.IsPositive() }, true),
		TopLosers:               top(holdings, func(h models.HoldingAnalytics) bool { return h.GainLoss.IsNegative() }, false),
	}, nil
}

func performance(txs []models.Transaction) models.PerformanceMetrics {
	m := models.PerformanceMetrics{
		TotalInvested:     decimal.Zero,
		TotalWithdrawn:    decimal.Zero,
		TotalTransactions: len(txs),
	}
	var first, last time.Time
	for i, tx := range txs {
		switch tx.Type {
		case models.TransactionBuy, models.TransactionDeposit:
			m.TotalInvested = m.TotalInvested.Add(tx.TotalAmount)
		case models.TransactionSell, models.TransactionWithdrawal:
			m.TotalWithdrawn = m.TotalWithdrawn.Add(tx.TotalAmount)
		}
		if i == 0 || tx.TransactionDate.Before(first) {
			first = tx.TransactionDate
		}
		if i == 0 || tx.TransactionDate.After(last) {
			last = tx.TransactionDate
		}
	}
	m.NetCashFlow = m.TotalInvested.Sub(m.TotalWithdrawn)
	if len(txs) > 0 {
		m.FirstTransactionDate = &first
		m.LastTransactionDate = &last
		m.DaysActive = int(last.Sub(first).Hours() / 24)
	}
	return m
}

// allocations attributes a holding to every account type whose accounts
// traded its symbol.
func allocations(p models.Portfolio, txs []models.Transaction, totalValue decimal.Decimal) []models.AssetAllocation {
	typeOf := make(map[uint]models.AccountType, len(p.Accounts))
	var order []models.AccountType
	seenType := make(map[models.AccountType]bool)
	for _, a := range p.Accounts {
		typeOf[a.ID] = a.AccountType
		if !seenType[a.AccountType] {
			seenType[a.AccountType] = true
			order = append(order, a.AccountType)
		}
	}

	symbols := make(map[models.AccountType]map[string]bool, len(order))
	for _, tx := range txs {
		typ, ok := typeOf[tx.AccountID]
		if !ok || tx.Symbol == "" {
			continue
		}
		if symbols[typ] == nil {
			symbols[typ] = make(map[string]bool)
		}
		symbols[typ][tx.Symbol] = true
	}

	out := make([]models.AssetAllocation, 0, len(order))
	for _, typ := range order {
		a := models.AssetAllocation{AccountType: typ, Value: decimal.Zero}
		for _, h := range p.Holdings {
			if symbols[typ][h.Symbol] {
				a.Value = a.Value.Add(h.CurrentValue())
				a.HoldingsCount++
			}
		}
		a.Percentage = models.Percent(a.Value, totalValue)
		out = append(out, a)
	}
	return out
}

func top(holdings []models.HoldingAnalytics, keep func(models.HoldingAnalytics) bool, desc bool) []models.TopPerformer {
	var picked []models.HoldingAnalytics
	for _, h := range holdings {
		if keep(h) {
			picked = append(picked, h)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool {
		if desc {
			return picked[i].GainLossPercentage.GreaterThan(picked[j].GainLossPercentage)
		}
		return picked[i].GainLossPercentage.LessThan(picked[j].GainLossPercentage)
	})
	if len(picked) > topPerformers {
		picked = picked[:topPerformers]
	}

	out := make([]models.TopPerformer, 0, len(picked))
	for _, h := range picked {
		out = append(out, models.TopPerformer{
			Symbol:             h.Symbol,
			GainLoss:           h.GainLoss,
			GainLossPercentage: h.GainLossPercentage,
			CurrentValue:       h.CurrentValue,
		})
	}
	return out
}

// History lists the portfolio's transactions matching filter, newest first,
// with per-type totals.
func (s *AnalyticsService) History(ctx context.Context, portfolioID uint, filter models.TransactionFilter) (models.TransactionHistoryResponse, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return models.TransactionHistoryResponse{}, invalid("unknown transaction type %q", filter.Type)
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return models.TransactionHistoryResponse{}, invalid("endDate is before startDate")
	}
	if _, err := s.store.GetPortfolio(ctx, portfolioID); err != nil {
		return models.TransactionHistoryResponse{}, err
	}
	txs, err := s.store.ListPortfolioTransactions(ctx, portfolioID, filter)
	if err != nil {
		return models.TransactionHistoryResponse{}, err
	}

	out := models.TransactionHistoryResponse{
		TotalTransactions: len(txs),
		Transactions:      make([]models.TransactionHistoryItem, 0, len(txs)),
		Summary: models.TransactionSummary{
			TotalBuyAmount:        decimal.Zero,
			TotalSellAmount:       decimal.Zero,
			TotalDepositAmount:    decimal.Zero,
			TotalWithdrawalAmount: decimal.Zero,
		},
	}
	sum := &out.Summary
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, models.TransactionHistoryItem{
			ID:              tx.ID,
			TransactionDate: tx.TransactionDate,
			TransactionType: tx.Type,
			Symbol:          tx.Symbol,
			Quantity:        tx.Quantity,
			Price:           tx.Price,
			TotalAmount:     tx.TotalAmount,
			AccountName:     tx.Account.Name,
			Notes:           tx.Notes,
		})
		switch tx.Type {
		case models.TransactionBuy:
			sum.TotalBuys++
			sum.TotalBuyAmount = sum.TotalBuyAmount.Add(tx.TotalAmount)
		case models.TransactionSell:
			sum.TotalSells++
			sum.TotalSellAmount = sum.TotalSellAmount.Add(tx.TotalAmount)
		case models.TransactionDeposit:
			sum.TotalDeposits++
			sum.TotalDepositAmount = sum.TotalDepositAmount.Add(tx.TotalAmount)
		case models.TransactionWithdrawal:
			sum.TotalWithdrawals++
			sum.TotalWithdrawalAmount = sum.TotalWithdrawalAmount.Add(tx.TotalAmount)
		}
	}
	return out, nil
}
