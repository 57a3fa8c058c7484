package database

import (
	"context"
	"errors"
	"fmt"

	"portfolio-tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const priceBatchSize = 100

var tradeTypes = []string{string(models.TransactionBuy), string(models.TransactionSell)}

// GormStore implements Store on gorm and PostgreSQL.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm errors onto the store's sentinel errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	default:
		return err
	}
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func accountsOf(db *gorm.DB, portfolioID uint) *gorm.DB {
	return db.Model(&models.Account{}).Select("id").Where("portfolio_id = ?", portfolioID)
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("transaction_date DESC").Order("id DESC")
}

/* ---- users ---- */

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.conn(ctx).Preload("Portfolios").First(&u, id).Error
	return u, translate(err)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("email = ?", email).First(&u).Error
	return u, translate(err)
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Preload("Portfolios").Order("id").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) DeleteUser(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := affected(tx.Delete(&models.User{}, id)); err != nil {
			return err
		}
		var ids []uint
		if err := tx.Model(&models.Portfolio{}).Where("user_id = ?", id).Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, pid := range ids {
			if err := deletePortfolio(tx, pid); err != nil {
				return err
			}
		}
		return nil
	})
}

/* ---- portfolios ---- */

func (s *GormStore) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(p).Error)
}

func (s *GormStore) GetPortfolio(ctx context.Context, id uint) (models.Portfolio, error) {
	var p models.Portfolio
	err := s.conn(ctx).
		Preload("Accounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Holdings", func(db *gorm.DB) *gorm.DB { return db.Order("symbol") }).
		First(&p, id).Error
	return p, translate(err)
}

func (s *GormStore) ListPortfolios(ctx context.Context, userID uint) ([]models.Portfolio, error) {
	var out []models.Portfolio
	err := s.conn(ctx).
		Preload("Accounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Holdings", func(db *gorm.DB) *gorm.DB { return db.Order("symbol") }).
		Where("user_id = ?", userID).
		Order("id").
		Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) UpdatePortfolio(ctx context.Context, p *models.Portfolio) error {
	res := s.conn(ctx).Model(&models.Portfolio{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
		})
	return affected(res)
}

func (s *GormStore) DeletePortfolio(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return deletePortfolio(tx, id)
	})
}

func deletePortfolio(tx *gorm.DB, id uint) error {
	if err := affected(tx.Delete(&models.Portfolio{}, id)); err != nil {
		return err
	}
	if err := tx.Where("account_id IN (?)", accountsOf(tx, id)).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("portfolio_id = ?", id).Delete(&models.Account{}).Error; err != nil {
		return err
	}
	return tx.Where("portfolio_id = ?", id).Delete(&models.Holding{}).Error
}

/* ---- accounts ---- */

func (s *GormStore) CreateAccount(ctx context.Context, a *models.Account) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(a).Error)
}

func (s *GormStore) GetAccount(ctx context.Context, id uint) (models.Account, error) {
	var a models.Account
	err := s.conn(ctx).Preload("Transactions", newestFirst).First(&a, id).Error
	return a, translate(err)
}

func (s *GormStore) ListAccounts(ctx context.Context, portfolioID uint) ([]models.Account, error) {
	var out []models.Account
	err := s.conn(ctx).
		Preload("Transactions", newestFirst).
		Where("portfolio_id = ?", portfolioID).
		Order("id").
		Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) DeleteAccount(ctx context.Context, id uint) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := affected(tx.Delete(&models.Account{}, id)); err != nil {
			return err
		}
		return tx.Where("account_id = ?", id).Delete(&models.Transaction{}).Error
	})
}

/* ---- transactions ---- */

func (s *GormStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(tx).Error)
}

func (s *GormStore) GetTransaction(ctx context.Context, id uint) (models.Transaction, error) {
	var tx models.Transaction
	err := s.conn(ctx).Preload("Account").First(&tx, id).Error
	return tx, translate(err)
}

func (s *GormStore) ListAccountTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	var out []models.Transaction
	err := newestFirst(s.conn(ctx).Where("account_id = ?", accountID)).Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) ListPortfolioTransactions(ctx context.Context, portfolioID uint, filter models.TransactionFilter) ([]models.Transaction, error) {
	db := s.conn(ctx)
	q := db.Preload("Account").Where("account_id IN (?)", accountsOf(db, portfolioID))
	if filter.Start != nil {
		q = q.Where("transaction_date >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("transaction_date <= ?", *filter.End)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}

	var out []models.Transaction
	err := newestFirst(q).Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) ListSymbolTransactions(ctx context.Context, portfolioID uint, symbol string) ([]models.Transaction, error) {
	db := s.conn(ctx)
	var out []models.Transaction
	err := db.
		Where("account_id IN (?)", accountsOf(db, portfolioID)).
		Where("symbol = ? AND type IN ?", symbol, tradeTypes).
		Order("transaction_date ASC").
		Order("id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) DeleteTransaction(ctx context.Context, id uint) error {
	return affected(s.conn(ctx).Delete(&models.Transaction{}, id))
}

/* ---- holdings ---- */

func (s *GormStore) GetHolding(ctx context.Context, portfolioID uint, symbol string) (models.Holding, error) {
	q := s.conn(ctx).Where("portfolio_id = ? AND symbol = ?", portfolioID, symbol)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var h models.Holding
	err := q.First(&h).Error
	return h, translate(err)
}

func (s *GormStore) GetHoldingByID(ctx context.Context, id uint) (models.Holding, error) {
	var h models.Holding
	err := s.conn(ctx).First(&h, id).Error
	return h, translate(err)
}

func (s *GormStore) ListHoldings(ctx context.Context, portfolioID uint) ([]models.Holding, error) {
	var out []models.Holding
	err := s.conn(ctx).Where("portfolio_id = ?", portfolioID).Order("symbol").Find(&out).Error
	return out, translate(err)
}

func (s *GormStore) PutHolding(ctx context.Context, h *models.Holding) error {
	if h.ID != 0 {
		return translate(s.conn(ctx).Save(h).Error)
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "portfolio_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity", "average_cost", "current_price", "last_updated", "updated_at",
		}),
	}).Create(h).Error
	return translate(err)
}

// DeleteHolding is a no-op when the holding does not exist.
func (s *GormStore) DeleteHolding(ctx context.Context, portfolioID uint, symbol string) error {
	return s.conn(ctx).
		Where("portfolio_id = ? AND symbol = ?", portfolioID, symbol).
		Delete(&models.Holding{}).Error
}

/* ---- prices ---- */

func (s *GormStore) SavePrices(ctx context.Context, prices []models.StockPrice) error {
	return CreateInBatches(s.conn(ctx), prices, priceBatchSize)
}

func (s *GormStore) ListPrices(ctx context.Context, symbol string, limit int) ([]models.StockPrice, error) {
	var out []models.StockPrice
	q := s.conn(ctx).Where("symbol = ?", symbol).Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, translate(err)
}

var _ Store = (*GormStore)(nil)
