package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Simulation
	Sim SimConfig

	// Database (optional, catalogue source)
	Database DatabaseConfig

	// Redis (optional, quote cache)
	Redis RedisConfig

	// External APIs
	Yahoo     YahooConfig
	CoinGecko CoinGeckoConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// SimConfig holds the simulation universe and defaults
type SimConfig struct {
	Capital        float64  // 기본 투자 금액
	TopN           int      // 자산군별 선택 개수
	EquitySymbols  []string // Yahoo 종목 코드
	CryptoIDs      []string // CoinGecko coin id
	QuoteCurrency  string   // vs_currency (e.g. brl)
	HistoryRange   string   // Yahoo range (e.g. 1mo)
	CataloguePath  string   // YAML 카탈로그 경로 (비어 있으면 기본값)
	ChartPath      string   // PNG 차트 출력 경로 (비어 있으면 생략)
	WarmupSchedule string   // cron (seconds field included)
	SyncSchedule   string   // 카탈로그 DB 동기화 cron
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	QuoteTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a catalogue database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string
	UserAgent string
	RPS       float64
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	BaseURL string
	APIKey  string
	RPS     float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Sim: SimConfig{
			Capital:        getEnvAsFloat("SIM_CAPITAL", 1000),
			TopN:           getEnvAsInt("SIM_TOP_N", 3),
			EquitySymbols:  getEnvAsList("SIM_EQUITY_SYMBOLS", []string{"PETR4.SA", "VALE3.SA", "ITUB4.SA"}),
			CryptoIDs:      getEnvAsList("SIM_CRYPTO_IDS", []string{"bitcoin", "ethereum", "cardano"}),
			QuoteCurrency:  strings.ToLower(getEnv("SIM_QUOTE_CURRENCY", "brl")),
			HistoryRange:   getEnv("SIM_HISTORY_RANGE", "1mo"),
			CataloguePath:  getEnv("SIM_CATALOGUE_PATH", ""),
			ChartPath:      getEnv("SIM_CHART_PATH", ""),
			WarmupSchedule: getEnv("SIM_WARMUP_SCHEDULE", "0 */10 * * * *"),
			SyncSchedule:   getEnv("SIM_CATALOGUE_SYNC_SCHEDULE", "0 0 * * * *"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			QuoteTTL: getEnvAsDuration("REDIS_QUOTE_TTL", "10m"),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent: getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"),
			RPS:       getEnvAsFloat("YAHOO_RPS", 2),
		},

		CoinGecko: CoinGeckoConfig{
			BaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
			APIKey:  getEnv("COINGECKO_API_KEY", ""),
			RPS:     getEnvAsFloat("COINGECKO_RPS", 0.5),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.Sim.Capital <= 0 {
		return fmt.Errorf("SIM_CAPITAL must be positive, got %v", c.Sim.Capital)
	}
	if c.Sim.TopN < 1 {
		return fmt.Errorf("SIM_TOP_N must be at least 1, got %d", c.Sim.TopN)
	}
	if len(c.Sim.EquitySymbols) == 0 {
		return fmt.Errorf("SIM_EQUITY_SYMBOLS is empty")
	}
	if len(c.Sim.CryptoIDs) == 0 {
		return fmt.Errorf("SIM_CRYPTO_IDS is empty")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
