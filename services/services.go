package services

import (
	"log/slog"
	"time"

	"portfolio-tracker/cache"
	"portfolio-tracker/database"
	"portfolio-tracker/market"
)

// Services bundles every service over one store.
type Services struct {
	Users        *UserService
	Portfolios   *PortfolioService
	Accounts     *AccountService
	Transactions *TransactionService
	Analytics    *AnalyticsService
	Prices       *PriceService
}

type Options struct {
	Store       database.Store
	Provider    market.Provider
	Locks       cache.Locker
	LockTTL     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

func New(opts Options) *Services {
	log := opts.Logger
	txs := NewTransactionService(opts.Store, opts.Locks, opts.LockTTL, log.With("service", "transactions"))
	return &Services{
		Users:        NewUserService(opts.Store, log.With("service", "users")),
		Portfolios:   NewPortfolioService(opts.Store, log.With("service", "portfolios")),
		Accounts:     NewAccountService(opts.Store, txs, log.With("service", "accounts")),
		Transactions: txs,
		Analytics:    NewAnalyticsService(opts.Store, log.With("service", "analytics")),
		Prices:       NewPriceService(opts.Store, opts.Provider, opts.Locks, opts.LockTTL, opts.Concurrency, log.With("service", "prices")),
	}
}
