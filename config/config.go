// Package config loads the service configuration and opens the connections
// it describes.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Market   MarketConfig   `toml:"market"`
	Lock     LockConfig     `toml:"lock"`
	LogLevel string         `toml:"log_level"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr"`
	Mode        string   `toml:"mode"` // gin mode: debug, release or test
	CORSOrigins []string `toml:"cors_origins"`
	Shutdown    Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string `toml:"driver"` // postgres or memory
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"ssl_mode"`
	TimeZone string `toml:"time_zone"`
	LogLevel string `toml:"log_level"` // gorm logger: silent, error, warn, info
	Migrate  bool   `toml:"auto_migrate"`
	Seed     bool   `toml:"seed"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	PoolSize int    `toml:"pool_size"`
}

type MarketConfig struct {
	Provider    string   `toml:"provider"` // simulated or alphavantage
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Timeout     Duration `toml:"timeout"`
	CacheTTL    Duration `toml:"cache_ttl"`
	HistoryTTL  Duration `toml:"history_ttl"`
	Concurrency int      `toml:"concurrency"`
}

// LockConfig bounds the per-holding lock taken while a transaction updates a
// position.
type LockConfig struct {
	TTL  Duration `toml:"ttl"`
	Wait Duration `toml:"wait"`
}

// Duration decodes TOML strings such as "5m" or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8080",
			Mode:        "release",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			Shutdown:    Duration{10 * time.Second},
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Name:     "portfolio",
			SSLMode:  "disable",
			TimeZone: "UTC",
			LogLevel: "warn",
			Migrate:  true,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "127.0.0.1:6379",
			PoolSize: 10,
		},
		Market: MarketConfig{
			Provider:    "simulated",
			BaseURL:     "https://www.alphavantage.co",
			Timeout:     Duration{10 * time.Second},
			CacheTTL:    Duration{5 * time.Minute},
			HistoryTTL:  Duration{24 * time.Hour},
			Concurrency: 4,
		},
		Lock: LockConfig{
			TTL:  Duration{10 * time.Second},
			Wait: Duration{5 * time.Second},
		},
		LogLevel: "info",
	}
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validGormLevels = map[string]bool{"silent": true, "error": true, "warn": true, "info": true}
	validGinModes   = map[string]bool{"debug": true, "release": true, "test": true}
	validDrivers    = map[string]bool{"postgres": true, "memory": true}
	validProviders  = map[string]bool{"simulated": true, "alphavantage": true}
)

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if !validGinModes[c.Server.Mode] {
		errs = append(errs, fmt.Sprintf("server.mode %q is not one of debug, release, test", c.Server.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if !validDrivers[c.Database.Driver] {
		errs = append(errs, fmt.Sprintf("database.driver %q is not one of postgres, memory", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Name == "" {
			errs = append(errs, "database.name is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port %d is out of range", c.Database.Port))
		}
	}
	if !validGormLevels[c.Database.LogLevel] {
		errs = append(errs, fmt.Sprintf("database.log_level %q is not one of silent, error, warn, info", c.Database.LogLevel))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required when redis is enabled")
	}

	if !validProviders[c.Market.Provider] {
		errs = append(errs, fmt.Sprintf("market.provider %q is not one of simulated, alphavantage", c.Market.Provider))
	}
	if c.Market.Provider == "alphavantage" && c.Market.APIKey == "" {
		errs = append(errs, "market.api_key is required for the alphavantage provider")
	}
	if c.Market.Concurrency <= 0 {
		errs = append(errs, "market.concurrency must be positive")
	}

	if c.Lock.TTL.Duration <= 0 || c.Lock.Wait.Duration <= 0 {
		errs = append(errs, "lock.ttl and lock.wait must be positive")
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}
