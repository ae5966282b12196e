package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gamerit/database"
)

// Config holds all application configuration
type Config struct {
	// Reddit API configuration
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// HTTP API configuration
	ListenAddr string

	// Game configuration
	StartingBalance int64 // Chips granted on first login
	AllowRepeatBets bool  // Whether a player may bet more than once on the same round

	// Round pool configuration
	RoundCeiling         int           // Maximum concurrently active rounds
	RoundDuration        time.Duration // How long a round accepts live score updates
	RoundPoolInterval    time.Duration // How often the pool is topped up / expired
	ScoreRefreshInterval time.Duration // How often live scores are re-fetched
	RoundSubreddits      []string      // Subreddits sampled for round candidates

	// Meme stock market configuration
	StockCeiling          int           // Maximum concurrently active stocks
	StockLifetime         time.Duration // Age after which a stock is delisted
	MarketRefreshInterval time.Duration // How often stock values are recomputed
	MemeSubreddits        []string      // Subreddits mined for trending keywords

	// Welfare configuration
	WelfareAmount    int64         // Chips granted per welfare claim
	WelfareThreshold int64         // Balance below which welfare can be claimed
	WelfareCooldown  time.Duration // Minimum time between claims

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RedditUserAgent:    getEnvWithDefault("REDDIT_USER_AGENT", "web:gamerit:v1.0 (karma chip betting)"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		ListenAddr:  getEnvWithDefault("LISTEN_ADDR", ":8080"),

		StartingBalance: 1000,
		AllowRepeatBets: true,

		RoundCeiling:         10,
		RoundDuration:        24 * time.Hour,
		RoundPoolInterval:    3 * time.Hour,
		ScoreRefreshInterval: 5 * time.Minute,
		RoundSubreddits:      defaultRoundSubreddits,

		StockCeiling:          10,
		StockLifetime:         7 * 24 * time.Hour,
		MarketRefreshInterval: time.Hour,
		MemeSubreddits:        defaultMemeSubreddits,

		WelfareAmount:    250,
		WelfareThreshold: 100,
		WelfareCooldown:  24 * time.Hour,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if repeat := os.Getenv("ALLOW_REPEAT_BETS"); repeat != "" {
		if parsed, err := strconv.ParseBool(repeat); err == nil {
			config.AllowRepeatBets = parsed
		}
	}
	if subs := os.Getenv("ROUND_SUBREDDITS"); subs != "" {
		config.RoundSubreddits = splitList(subs)
	}
	if subs := os.Getenv("MEME_SUBREDDITS"); subs != "" {
		config.MemeSubreddits = splitList(subs)
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.RedditClientID == "" || config.RedditClientSecret == "" {
			return nil, fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

var defaultRoundSubreddits = []string{
	"funny", "gaming", "pics", "aww", "mildlyinteresting", "todayilearned",
}

var defaultMemeSubreddits = []string{
	"memes", "dankmemes", "wallstreetbets", "me_irl",
}

// splitList parses a comma-separated list, trimming whitespace and dropping empties
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:           "test",
		StartingBalance:       1000,
		AllowRepeatBets:       true,
		RoundCeiling:          10,
		RoundDuration:         24 * time.Hour,
		RoundPoolInterval:     3 * time.Hour,
		ScoreRefreshInterval:  5 * time.Minute,
		RoundSubreddits:       []string{"funny", "gaming", "pics"},
		StockCeiling:          10,
		StockLifetime:         7 * 24 * time.Hour,
		MarketRefreshInterval: time.Hour,
		MemeSubreddits:        []string{"memes", "dankmemes"},
		WelfareAmount:         250,
		WelfareThreshold:      100,
		WelfareCooldown:       24 * time.Hour,
	}
}
