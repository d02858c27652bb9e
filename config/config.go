package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	Data      DataConfig      `mapstructure:"data"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
}

type CoinGeckoConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// APIKeyParameter names the SSM parameter holding the API key in prod.
	APIKeyParameter string      `mapstructure:"api_key_parameter"`
	Retry           RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Wait        time.Duration `mapstructure:"wait"`
}

// DataConfig holds every file-system location the tracker writes to or reads
// from, so tests can point components at throwaway paths.
type DataConfig struct {
	Root              string `mapstructure:"root"`               // per-exchange history files
	ExchangesFile     string `mapstructure:"exchanges_file"`     // tracked exchange list
	BaselineFile      string `mapstructure:"baseline_file"`      // listings baseline snapshot
	EventLogFile      string `mapstructure:"event_log_file"`     // listings event log
	MaxFileSizeMB     int    `mapstructure:"max_file_size_mb"`   // rotation threshold
	NormalizeListings bool   `mapstructure:"normalize_listings"` // normalize exchange/symbol before diffing
}

type ScheduleConfig struct {
	// Cron is a robfig/cron spec; empty means run once and exit.
	Cron string `mapstructure:"cron"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// MaxFileSizeBytes converts the configured rotation threshold to bytes.
func (d DataConfig) MaxFileSizeBytes() int64 {
	return int64(d.MaxFileSizeMB) * 1024 * 1024
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	v.SetDefault("coingecko.base_url", "https://pro-api.coingecko.com")
	v.SetDefault("coingecko.timeout", "60s")
	v.SetDefault("coingecko.retry.max_attempts", 3)
	v.SetDefault("coingecko.retry.wait", "30s")
	v.SetDefault("data.max_file_size_mb", 3)

	// Support environment variables with dot notation (e.g., COINGECKO_BASE_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
