package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"portfolio-tracker/cache"
	"portfolio-tracker/database"
	"portfolio-tracker/ledger"
	"portfolio-tracker/models"
)

// TransactionService records ledger entries and keeps each portfolio's
// holdings in step with them. Every write that touches a holding runs under
// the holding's lock and inside one store transaction.
type TransactionService struct {
	store   database.Store
	locks   cache.Locker
	lockTTL time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewTransactionService(store database.Store, locks cache.Locker, lockTTL time.Duration, log *slog.Logger) *TransactionService {
	return &TransactionService{
		store:   store,
		locks:   locks,
		lockTTL: lockTTL,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionService) Get(ctx context.Context, id uint) (models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) ListByAccount(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	return s.store.ListAccountTransactions(ctx, accountID)
}

func (s *TransactionService) ListByPortfolio(ctx context.Context, portfolioID uint) ([]models.Transaction, error) {
	return s.store.ListPortfolioTransactions(ctx, portfolioID, models.TransactionFilter{})
}

func (s *TransactionService) build(req models.CreateTransactionRequest) (models.Transaction, error) {
	typ, err := models.ParseTransactionType(req.TransactionType)
	if err != nil {
		return models.Transaction{}, invalid("%v", err)
	}
	if err := checkAmount("quantity", req.Quantity); err != nil {
		return models.Transaction{}, err
	}
	if err := checkAmount("price", req.Price); err != nil {
		return models.Transaction{}, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if typ.IsTrade() {
		if symbol == "" {
			return models.Transaction{}, invalid("symbol is required for %s transactions", typ)
		}
		if len(symbol) > 10 {
			return models.Transaction{}, invalid("symbol must be at most 10 characters")
		}
	} else {
		symbol = ""
	}
	if len([]rune(req.Notes)) > 500 {
		return models.Transaction{}, invalid("notes must be at most 500 characters")
	}

	date := s.now()
	if req.TransactionDate != nil && !req.TransactionDate.IsZero() {
		date = req.TransactionDate.UTC()
	}

	return models.Transaction{
		AccountID:       req.AccountID,
		Type:            typ,
		Symbol:          symbol,
		Quantity:        req.Quantity,
		Price:           req.Price,
		TotalAmount:     req.Quantity.Mul(req.Price),
		TransactionDate: date,
		Notes:           strings.TrimSpace(req.Notes),
	}, nil
}

// Create records a transaction. Buys and sells advance the holding of their
// symbol; a rejected sell leaves both the ledger and the holding unchanged.
func (s *TransactionService) Create(ctx context.Context, req models.CreateTransactionRequest) (models.Transaction, error) {
	tx, err := s.build(req)
	if err != nil {
		return models.Transaction{}, err
	}

	account, err := s.store.GetAccount(ctx, tx.AccountID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Transaction{}, fmt.Errorf("account %d: %w", tx.AccountID, err)
		}
		return models.Transaction{}, err
	}
	account.Transactions = nil

	if !tx.AffectsHolding() {
		if err := s.store.CreateTransaction(ctx, &tx); err != nil {
			return models.Transaction{}, err
		}
		tx.Account = account
		s.log.Info("transaction recorded", "transaction_id", tx.ID, "type", tx.Type, "account_id", tx.AccountID)
		return tx, nil
	}

	portfolioID := account.PortfolioID
	err = s.locked(ctx, portfolioID, []string{tx.Symbol}, func() error {
		return s.store.Atomic(ctx, func(st database.Store) error {
			next, err := s.advance(ctx, st, portfolioID, tx)
			if err != nil {
				return err
			}
			if err := st.CreateTransaction(ctx, &tx); err != nil {
				return err
			}
			return putOrDelete(ctx, st, portfolioID, tx.Symbol, next)
		})
	})
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Account = account
	s.log.Info("transaction recorded",
		"transaction_id", tx.ID, "type", tx.Type, "symbol", tx.Symbol,
		"quantity", tx.Quantity.String(), "price", tx.Price.String(), "portfolio_id", portfolioID)
	return tx, nil
}

// advance computes the holding after tx. A trade dated after the symbol's
// ledger is applied as a delta; a backdated one is inserted by date and the
// ledger replayed, so a sell must be covered at the date it claims.
func (s *TransactionService) advance(ctx context.Context, st database.Store, portfolioID uint, tx models.Transaction) (*models.Holding, error) {
	current, err := holdingOrNil(ctx, st, portfolioID, tx.Symbol)
	if err != nil {
		return nil, err
	}
	history, err := st.ListSymbolTransactions(ctx, portfolioID, tx.Symbol)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 || !history[len(history)-1].TransactionDate.After(tx.TransactionDate) {
		return ledger.Apply(current, tx, s.now())
	}

	next, err := ledger.Insert(portfolioID, tx.Symbol, history, tx, s.now())
	if err != nil {
		return nil, err
	}
	if next != nil && current != nil {
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.CurrentPrice = current.CurrentPrice
	}
	s.log.Debug("backdated trade replayed", "portfolio_id", portfolioID, "symbol", tx.Symbol,
		"transaction_date", tx.TransactionDate)
	return next, nil
}

// Delete removes a transaction. For buys and sells the holding is rebuilt by
// replaying what is left of the symbol's ledger.
func (s *TransactionService) Delete(ctx context.Context, id uint) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if !tx.AffectsHolding() {
		if err := s.store.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		s.log.Info("transaction deleted", "transaction_id", id)
		return nil
	}

	portfolioID := tx.Account.PortfolioID
	err = s.rebuildAfter(ctx, portfolioID, []string{tx.Symbol}, func(st database.Store) error {
		return st.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("transaction deleted", "transaction_id", id, "symbol", tx.Symbol, "portfolio_id", portfolioID)
	return nil
}

// RebuildHoldings replays the ledger of each symbol in portfolioID.
func (s *TransactionService) RebuildHoldings(ctx context.Context, portfolioID uint, symbols []string) error {
	return s.rebuildAfter(ctx, portfolioID, symbols, nil)
}

// locked runs fn while holding the locks of every listed holding. Locks are
// taken in sorted order.
func (s *TransactionService) locked(ctx context.Context, portfolioID uint, symbols []string, fn func() error) error {
	for _, symbol := range uniqueSorted(symbols) {
		unlock, err := s.locks.Acquire(ctx, cache.HoldingKey(portfolioID, symbol), s.lockTTL)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return fn()
}

// rebuildAfter runs fn (if any) and then rebuilds the listed holdings, all in
// one store transaction and under the holdings' locks.
func (s *TransactionService) rebuildAfter(ctx context.Context, portfolioID uint, symbols []string, fn func(database.Store) error) error {
	symbols = uniqueSorted(symbols)
	return s.locked(ctx, portfolioID, symbols, func() error {
		return s.store.Atomic(ctx, func(st database.Store) error {
			if fn != nil {
				if err := fn(st); err != nil {
					return err
				}
			}
			for _, symbol := range symbols {
				if err := s.rebuild(ctx, st, portfolioID, symbol); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// rebuild replays the symbol's ledger into its holding. The stored market
// price of an existing holding survives the rebuild; a holding that did not
// exist takes the last replayed buy price.
func (s *TransactionService) rebuild(ctx context.Context, st database.Store, portfolioID uint, symbol string) error {
	prev, err := holdingOrNil(ctx, st, portfolioID, symbol)
	if err != nil {
		return err
	}
	txs, err := st.ListSymbolTransactions(ctx, portfolioID, symbol)
	if err != nil {
		return err
	}
	next, err := ledger.Replay(portfolioID, symbol, txs, s.now())
	if err != nil {
		if errors.Is(err, ledger.ErrDataIntegrity) {
			s.log.Error("holding cannot be rebuilt from ledger",
				"alert", true, "portfolio_id", portfolioID, "symbol", symbol, "error", err)
		}
		return err
	}
	if next != nil && prev != nil {
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
		next.CurrentPrice = prev.CurrentPrice
	}
	return putOrDelete(ctx, st, portfolioID, symbol, next)
}

func holdingOrNil(ctx context.Context, st database.Store, portfolioID uint, symbol string) (*models.Holding, error) {
	h, err := st.GetHolding(ctx, portfolioID, symbol)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func putOrDelete(ctx context.Context, st database.Store, portfolioID uint, symbol string, h *models.Holding) error {
	if h == nil {
		return st.DeleteHolding(ctx, portfolioID, symbol)
	}
	h.PortfolioID = portfolioID
	return st.PutHolding(ctx, h)
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
