// Package config loads application configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Quotes    QuoteConfig
	History   HistoryConfig
	Providers ProviderConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// QuoteConfig holds quote fetching and caching configuration
type QuoteConfig struct {
	BatchSize      int
	BatchDelay     time.Duration
	CacheTTL       time.Duration
	CacheRetention time.Duration
}

// HistoryConfig holds history and concurrency configuration
type HistoryConfig struct {
	Days             int
	MaxDays          int
	FetchConcurrency int
	ExternalTimeout  time.Duration
}

// ProviderConfig holds external provider endpoints and credentials
type ProviderConfig struct {
	YahooBaseURL   string
	EODHDBaseURL   string
	EODHDAPIKey    string
	EODHDRateLimit int
}

// SchedulerConfig holds background job schedules
type SchedulerConfig struct {
	CachePersistSchedule string
}

// Load reads configuration from environment variables and .env file.
//
// Returns an error when a numeric or duration variable cannot be parsed or is
// out of range, or when EODHD_API_KEY cannot be decrypted with ENCRYPTION_KEY.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	p := &parser{}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_engine.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: p.bool("LOG_PRETTY", false),
		},
		Quotes: QuoteConfig{
			BatchSize:      p.positiveInt("QUOTE_BATCH_SIZE", 25),
			BatchDelay:     p.duration("QUOTE_BATCH_DELAY", 250*time.Millisecond),
			CacheTTL:       p.duration("QUOTE_CACHE_TTL", 5*time.Minute),
			CacheRetention: p.duration("QUOTE_CACHE_RETENTION", 168*time.Hour),
		},
		History: HistoryConfig{
			Days:             p.positiveInt("HISTORY_DAYS", 90),
			MaxDays:          p.positiveInt("HISTORY_MAX_DAYS", 3660),
			FetchConcurrency: p.positiveInt("FETCH_CONCURRENCY", 4),
			ExternalTimeout:  p.duration("EXTERNAL_TIMEOUT", 10*time.Second),
		},
		Providers: ProviderConfig{
			YahooBaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			EODHDBaseURL:   getEnv("EODHD_BASE_URL", "https://eodhd.com/api"),
			EODHDAPIKey:    os.Getenv("EODHD_API_KEY"),
			EODHDRateLimit: p.positiveInt("EODHD_RATE_LIMIT", 5),
		},
		Scheduler: SchedulerConfig{
			CachePersistSchedule: getEnv("CACHE_PERSIST_SCHEDULE", "@every 5m"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if key := os.Getenv("ENCRYPTION_KEY"); key != "" && config.Providers.EODHDAPIKey != "" {
		plain, err := DecryptSecret(key, config.Providers.EODHDAPIKey)
		if err != nil {
			return nil, fmt.Errorf("EODHD_API_KEY: %w", err)
		}
		config.Providers.EODHDAPIKey = plain
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// DecryptSecret decrypts a fernet token with the given base64 key. Tokens do
// not expire.
func DecryptSecret(key, token string) (string, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return "", fmt.Errorf("invalid ENCRYPTION_KEY: %w", err)
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{k})
	if msg == nil {
		return "", fmt.Errorf("failed to decrypt secret")
	}
	return string(msg), nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser reads typed variables, keeping the first error.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (p *parser) positiveInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	if n <= 0 {
		p.fail(key, v, fmt.Errorf("must be positive"))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	if d < 0 {
		p.fail(key, v, fmt.Errorf("must not be negative"))
		return def
	}
	return d
}

func (p *parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}
