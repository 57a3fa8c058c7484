package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio-tracker/models"
)

type memoryData struct {
	nextID       uint
	users        map[uint]models.User
	portfolios   map[uint]models.Portfolio
	accounts     map[uint]models.Account
	transactions map[uint]models.Transaction
	holdings     map[uint]models.Holding
	prices       []models.StockPrice
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		nextID:       d.nextID,
		users:        make(map[uint]models.User, len(d.users)),
		portfolios:   make(map[uint]models.Portfolio, len(d.portfolios)),
		accounts:     make(map[uint]models.Account, len(d.accounts)),
		transactions: make(map[uint]models.Transaction, len(d.transactions)),
		holdings:     make(map[uint]models.Holding, len(d.holdings)),
		prices:       append([]models.StockPrice(nil), d.prices...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.portfolios {
		c.portfolios[k] = v
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.holdings {
		c.holdings[k] = v
	}
	return c
}

// MemoryStore is an in-process Store. Atomic serializes callers and restores
// a snapshot when the callback fails.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *memoryData
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			users:        make(map[uint]models.User),
			portfolios:   make(map[uint]models.Portfolio),
			accounts:     make(map[uint]models.Account),
			transactions: make(map[uint]models.Transaction),
			holdings:     make(map[uint]models.Holding),
		},
		now: time.Now,
	}
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) id() uint {
	s.data.nextID++
	return s.data.nextID
}

func (s *MemoryStore) stamp(m *time.Time, created *time.Time) {
	now := s.now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	*m = now
}

/* ---- users ---- */

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrAlreadyExists
		}
	}
	u.ID = s.id()
	s.stamp(&u.UpdatedAt, &u.CreatedAt)
	stored := *u
	stored.Portfolios = nil
	s.data.users[u.ID] = stored
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.data.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	u.Portfolios = s.portfoliosOf(id)
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		u.Portfolios = s.portfoliosOf(u.ID)
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.users, id)
	for pid, p := range s.data.portfolios {
		if p.UserID == id {
			s.deletePortfolio(pid)
		}
	}
	return nil
}

/* ---- portfolios ---- */

func (s *MemoryStore) portfoliosOf(userID uint) []models.Portfolio {
	var out []models.Portfolio
	for _, p := range s.data.portfolios {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) CreatePortfolio(_ context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.stamp(&p.UpdatedAt, &p.CreatedAt)
	stored := *p
	stored.Accounts, stored.Holdings = nil, nil
	s.data.portfolios[p.ID] = stored
	return nil
}

func (s *MemoryStore) loadPortfolio(p models.Portfolio) models.Portfolio {
	p.Accounts = s.accountsOf(p.ID)
	p.Holdings = s.holdingsOf(p.ID)
	return p
}

func (s *MemoryStore) GetPortfolio(_ context.Context, id uint) (models.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.portfolios[id]
	if !ok {
		return models.Portfolio{}, ErrNotFound
	}
	return s.loadPortfolio(p), nil
}

func (s *MemoryStore) ListPortfolios(_ context.Context, userID uint) ([]models.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.portfoliosOf(userID)
	for i := range out {
		out[i] = s.loadPortfolio(out[i])
	}
	return out, nil
}

func (s *MemoryStore) UpdatePortfolio(_ context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.data.portfolios[p.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = p.Name
	stored.Description = p.Description
	s.stamp(&stored.UpdatedAt, nil)
	s.data.portfolios[p.ID] = stored
	return nil
}

func (s *MemoryStore) DeletePortfolio(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.portfolios[id]; !ok {
		return ErrNotFound
	}
	s.deletePortfolio(id)
	return nil
}

func (s *MemoryStore) deletePortfolio(id uint) {
	delete(s.data.portfolios, id)
	for aid, a := range s.data.accounts {
		if a.PortfolioID == id {
			s.deleteAccount(aid)
		}
	}
	for hid, h := range s.data.holdings {
		if h.PortfolioID == id {
			delete(s.data.holdings, hid)
		}
	}
}

/* ---- accounts ---- */

func (s *MemoryStore) accountsOf(portfolioID uint) []models.Account {
	out := []models.Account{}
	for _, a := range s.data.accounts {
		if a.PortfolioID == portfolioID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) CreateAccount(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.stamp(&a.UpdatedAt, &a.CreatedAt)
	stored := *a
	stored.Transactions = nil
	s.data.accounts[a.ID] = stored
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id uint) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.data.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	a.Transactions = s.transactionsOf(id)
	return a, nil
}

func (s *MemoryStore) ListAccounts(_ context.Context, portfolioID uint) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.accountsOf(portfolioID)
	for i := range out {
		out[i].Transactions = s.transactionsOf(out[i].ID)
	}
	return out, nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.accounts[id]; !ok {
		return ErrNotFound
	}
	s.deleteAccount(id)
	return nil
}

func (s *MemoryStore) deleteAccount(id uint) {
	delete(s.data.accounts, id)
	for tid, tx := range s.data.transactions {
		if tx.AccountID == id {
			delete(s.data.transactions, tid)
		}
	}
}

/* ---- transactions ---- */

func sortNewestFirst(txs []models.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.After(txs[j].TransactionDate)
		}
		return txs[i].ID > txs[j].ID
	})
}

func (s *MemoryStore) transactionsOf(accountID uint) []models.Transaction {
	out := []models.Transaction{}
	for _, tx := range s.data.transactions {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out
}

func (s *MemoryStore) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.accounts[tx.AccountID]; !ok {
		return ErrNotFound
	}
	tx.ID = s.id()
	s.stamp(&tx.UpdatedAt, &tx.CreatedAt)
	stored := *tx
	stored.Account = models.Account{}
	s.data.transactions[tx.ID] = stored
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id uint) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.data.transactions[id]
	if !ok {
		return models.Transaction{}, ErrNotFound
	}
	tx.Account = s.data.accounts[tx.AccountID]
	return tx, nil
}

func (s *MemoryStore) ListAccountTransactions(_ context.Context, accountID uint) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsOf(accountID), nil
}

func (s *MemoryStore) ListPortfolioTransactions(_ context.Context, portfolioID uint, filter models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Transaction{}
	for _, tx := range s.data.transactions {
		account, ok := s.data.accounts[tx.AccountID]
		if !ok || account.PortfolioID != portfolioID {
			continue
		}
		if filter.Start != nil && tx.TransactionDate.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && tx.TransactionDate.After(*filter.End) {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		tx.Account = account
		out = append(out, tx)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListSymbolTransactions(_ context.Context, portfolioID uint, symbol string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, tx := range s.data.transactions {
		account, ok := s.data.accounts[tx.AccountID]
		if !ok || account.PortfolioID != portfolioID || tx.Symbol != symbol || !tx.Type.IsTrade() {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.transactions, id)
	return nil
}

/* ---- holdings ---- */

func (s *MemoryStore) holdingsOf(portfolioID uint) []models.Holding {
	out := []models.Holding{}
	for _, h := range s.data.holdings {
		if h.PortfolioID == portfolioID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (s *MemoryStore) findHolding(portfolioID uint, symbol string) (models.Holding, bool) {
	for _, h := range s.data.holdings {
		if h.PortfolioID == portfolioID && h.Symbol == symbol {
			return h, true
		}
	}
	return models.Holding{}, false
}

func (s *MemoryStore) GetHolding(_ context.Context, portfolioID uint, symbol string) (models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.findHolding(portfolioID, symbol)
	if !ok {
		return models.Holding{}, ErrNotFound
	}
	return h, nil
}

func (s *MemoryStore) GetHoldingByID(_ context.Context, id uint) (models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.data.holdings[id]
	if !ok {
		return models.Holding{}, ErrNotFound
	}
	return h, nil
}

func (s *MemoryStore) ListHoldings(_ context.Context, portfolioID uint) ([]models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.holdingsOf(portfolioID), nil
}

func (s *MemoryStore) PutHolding(_ context.Context, h *models.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.findHolding(h.PortfolioID, h.Symbol); ok {
		h.ID = existing.ID
		h.CreatedAt = existing.CreatedAt
	} else if h.ID == 0 {
		h.ID = s.id()
	}
	s.stamp(&h.UpdatedAt, &h.CreatedAt)
	s.data.holdings[h.ID] = *h
	return nil
}

func (s *MemoryStore) DeleteHolding(_ context.Context, portfolioID uint, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.findHolding(portfolioID, symbol); ok {
		delete(s.data.holdings, h.ID)
	}
	return nil
}

/* ---- prices ---- */

func (s *MemoryStore) SavePrices(_ context.Context, prices []models.StockPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range prices {
		p.ID = s.id()
		s.stamp(&p.UpdatedAt, &p.CreatedAt)
		s.data.prices = append(s.data.prices, p)
	}
	return nil
}

func (s *MemoryStore) ListPrices(_ context.Context, symbol string, limit int) ([]models.StockPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StockPrice
	for _, p := range s.data.prices {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
