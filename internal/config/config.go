// Package config содержит логику чтения конфигурации сервиса курьера-партнёра.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

const (
	defaultRunAddress   = "localhost:8080"
	defaultCookieSecret = "partner-secret"
	defaultLogLevel     = "info"
)

// Config содержит параметры конфигурации сервиса курьера-партнёра.
type Config struct {
	RunAddress      string `env:"RUN_ADDRESS"`
	SeedFile        string `env:"SEED_FILE"`
	DispatchAddress string `env:"DISPATCH_ADDRESS"`
	CookieSecret    string `env:"COOKIE_SECRET"`
	LogLevel        string `env:"LOG_LEVEL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envSeedFile := cfg.SeedFile
	envDispatchAddress := cfg.DispatchAddress
	envCookieSecret := cfg.CookieSecret
	envLogLevel := cfg.LogLevel

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.SeedFile, "s", "", "YAML file with orders to load on startup")
	flag.StringVar(&cfg.DispatchAddress, "d", "", "dispatch feed address")
	flag.StringVar(&cfg.CookieSecret, "k", defaultCookieSecret, "secret for signing auth cookies")
	flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envSeedFile != "" {
		cfg.SeedFile = envSeedFile
	}
	if envDispatchAddress != "" {
		cfg.DispatchAddress = envDispatchAddress
	}
	if envCookieSecret != "" {
		cfg.CookieSecret = envCookieSecret
	}
	if envLogLevel != "" {
		cfg.LogLevel = envLogLevel
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.CookieSecret == "" {
		cfg.CookieSecret = defaultCookieSecret
	}

	if _, err := zap.ParseAtomicLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	return cfg, nil
}

// NewLogger создаёт production-логгер с уровнем из конфигурации.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
