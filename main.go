package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-tracker/cache"
	"portfolio-tracker/config"
	"portfolio-tracker/database"
	"portfolio-tracker/handlers"
	"portfolio-tracker/market"
	"portfolio-tracker/middleware"
	"portfolio-tracker/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	decimal.MarshalJSONWithoutQuotes = true

	store, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = config.InitRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	var provider market.Provider
	switch cfg.Market.Provider {
	case "alphavantage":
		provider = market.NewAlphaVantage(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Market.Timeout.Duration)
	default:
		provider = market.NewSimulated(time.Now().UnixNano())
	}

	var locks cache.Locker = cache.NewLocalLocker(cfg.Lock.Wait.Duration)
	if rdb != nil {
		provider = market.NewCached(provider,
			cache.NewPriceCache(rdb, cfg.Market.CacheTTL.Duration, cfg.Market.HistoryTTL.Duration),
			logger.With("component", "price_cache"))
		locks = cache.NewRedisLocker(rdb, cfg.Lock.Wait.Duration)
	}

	svc := services.New(services.Options{
		Store:       store,
		Provider:    provider,
		Locks:       locks,
		LockTTL:     cfg.Lock.TTL.Duration,
		Concurrency: cfg.Market.Concurrency,
		Logger:      logger,
	})

	if cfg.Database.Seed {
		if err := svc.Seed(ctx); err != nil {
			return err
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(logger.With("component", "http")),
		middleware.Recovery(logger),
		middleware.CORS(cfg.Server.CORSOrigins),
	)
	handlers.New(svc, logger.With("component", "handlers")).Register(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "database", cfg.Database.Driver,
			"redis", cfg.Redis.Enabled, "market", cfg.Market.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown.Duration)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.DatabaseConfig) (database.Store, func(), error) {
	if cfg.Driver == "memory" {
		return database.NewMemoryStore(), func() {}, nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = sqlDB.Close() }

	if cfg.Migrate {
		if err := database.Migrate(db); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return database.NewGormStore(db), closeFn, nil
}
