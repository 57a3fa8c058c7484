package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path over Defaults, then applies the
// environment (including a .env file in the working directory, if any).
// A missing file is not an error; the defaults and environment still apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Server.Addr, "PORTFOLIO_SERVER_ADDR")
	setStr(&cfg.Server.Mode, "GIN_MODE")
	setStringSlice(&cfg.Server.CORSOrigins, "PORTFOLIO_CORS_ORIGINS")

	// DB_* names are kept for existing deployments.
	setStr(&cfg.Database.Driver, "PORTFOLIO_DB_DRIVER")
	setStr(&cfg.Database.DSN, "DATABASE_URL")
	setStr(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setStr(&cfg.Database.User, "DB_USER")
	setStr(&cfg.Database.Password, "DB_PASSWORD")
	setStr(&cfg.Database.Name, "DB_NAME")
	setStr(&cfg.Database.SSLMode, "DB_SSLMODE")
	setStr(&cfg.Database.TimeZone, "DB_TIMEZONE")
	setBool(&cfg.Database.Migrate, "PORTFOLIO_DB_AUTO_MIGRATE")
	setBool(&cfg.Database.Seed, "PORTFOLIO_DB_SEED")

	setBool(&cfg.Redis.Enabled, "PORTFOLIO_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setStr(&cfg.Market.Provider, "PORTFOLIO_MARKET_PROVIDER")
	setStr(&cfg.Market.APIKey, "ALPHA_VANTAGE_API_KEY")
	setDuration(&cfg.Market.CacheTTL, "PORTFOLIO_MARKET_CACHE_TTL")

	setDuration(&cfg.Lock.TTL, "PORTFOLIO_LOCK_TTL")
	setDuration(&cfg.Lock.Wait, "PORTFOLIO_LOCK_WAIT")

	setStr(&cfg.LogLevel, "PORTFOLIO_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		*dst = cleaned
	}
}
