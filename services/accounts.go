package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"portfolio-tracker/database"
	"portfolio-tracker/models"
)

type AccountService struct {
	store database.Store
	txs   *TransactionService
	log   *slog.Logger
}

func NewAccountService(store database.Store, txs *TransactionService, log *slog.Logger) *AccountService {
	return &AccountService{store: store, txs: txs, log: log}
}

func (s *AccountService) ListByPortfolio(ctx context.Context, portfolioID uint) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, portfolioID)
}

func (s *AccountService) Get(ctx context.Context, id uint) (models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) Create(ctx context.Context, req models.CreateAccountRequest) (models.Account, error) {
	name := strings.TrimSpace(req.Name)
	if n := len([]rune(name)); n < 3 || n > 100 {
		return models.Account{}, invalid("name must be between 3 and 100 characters")
	}
	typ, err := models.ParseAccountType(req.AccountType)
	if err != nil {
		return models.Account{}, invalid("%v", err)
	}
	if _, err := s.store.GetPortfolio(ctx, req.PortfolioID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Account{}, invalid("portfolio with ID %d not found", req.PortfolioID)
		}
		return models.Account{}, err
	}

	a := models.Account{PortfolioID: req.PortfolioID, Name: name, AccountType: typ}
	if err := s.store.CreateAccount(ctx, &a); err != nil {
		return models.Account{}, err
	}
	s.log.Info("account created", "account_id", a.ID, "portfolio_id", a.PortfolioID, "type", a.AccountType)
	return a, nil
}

// Delete removes the account with its transactions and rebuilds every
// holding those transactions contributed to.
func (s *AccountService) Delete(ctx context.Context, id uint) error {
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	var symbols []string
	for _, tx := range a.Transactions {
		if tx.AffectsHolding() {
			symbols = append(symbols, tx.Symbol)
		}
	}

	err = s.txs.rebuildAfter(ctx, a.PortfolioID, symbols, func(st database.Store) error {
		return st.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("account deleted", "account_id", id, "portfolio_id", a.PortfolioID, "holdings_rebuilt", len(uniqueSorted(symbols)))
	return nil
}
