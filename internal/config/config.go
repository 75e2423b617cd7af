// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram settings
	BotToken  string
	ChannelID string

	// Rewrite service settings
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string // optional fallback provider

	// Embedding service settings
	EmbedEndpoint string
	EmbedModel    string

	// Deduplication settings
	DuplicateThreshold float64
	HistoryWindow      time.Duration
	HistoryFilePath    string
	DatabaseURL        string // optional Postgres history backend

	// Dispatch settings
	BurstLimit   int
	BurstDelay   time.Duration // pause after the burst limit is reached
	PacingDelay  time.Duration // delay between processed entries
	PollInterval time.Duration

	// RSS settings
	FeedURLs        []string
	FeedsConfigPath string // optional YAML with extra feed URLs

	// App settings
	Debug          bool
	RequestTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		GeminiModel:        "gemini-1.5-flash",
		EmbedModel:         "paraphrase-multilingual-MiniLM-L12-v2",
		DuplicateThreshold: 0.60,
		HistoryWindow:      24 * time.Hour,
		HistoryFilePath:    "sent_posts.json",
		BurstLimit:         3,
		PacingDelay:        30 * time.Second,
		PollInterval:       5 * time.Minute,
		RequestTimeout:     30 * time.Second,
	}

	// Load from environment
	cfg.BotToken = os.Getenv("BOT_TOKEN")
	cfg.ChannelID = os.Getenv("CHANNEL_ID")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.EmbedEndpoint = os.Getenv("EMBED_ENDPOINT")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")

	cfg.HistoryFilePath = getEnvOrDefault("HISTORY_FILE", cfg.HistoryFilePath)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.EmbedModel = getEnvOrDefault("EMBED_MODEL", cfg.EmbedModel)

	// DELAY_SECONDS has no default: a missing or malformed value is fatal.
	delay, err := strconv.Atoi(os.Getenv("DELAY_SECONDS"))
	if err != nil {
		return nil, fmt.Errorf("DELAY_SECONDS is required and must be an integer: %v", err)
	}
	cfg.BurstDelay = time.Duration(delay) * time.Second

	for _, u := range strings.Split(os.Getenv("RSS_FEED_URLS"), "|") {
		if u = strings.TrimSpace(u); u != "" {
			cfg.FeedURLs = append(cfg.FeedURLs, u)
		}
	}

	if v := os.Getenv("DUPLICATE_THRESHOLD"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("DUPLICATE_THRESHOLD must be a float: %v", err)
		}
		cfg.DuplicateThreshold = val
	}

	hours, err := getEnvInt("MAX_HISTORY_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if hours <= 0 {
		return nil, fmt.Errorf("MAX_HISTORY_HOURS must be positive, got %d", hours)
	}
	cfg.HistoryWindow = time.Duration(hours) * time.Hour

	burst, err := getEnvInt("BURST_LIMIT", cfg.BurstLimit)
	if err != nil {
		return nil, err
	}
	if burst <= 0 {
		return nil, fmt.Errorf("BURST_LIMIT must be positive, got %d", burst)
	}
	cfg.BurstLimit = burst

	pacing, err := getEnvInt("PACING_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if pacing < 0 {
		return nil, fmt.Errorf("PACING_SECONDS must not be negative, got %d", pacing)
	}
	cfg.PacingDelay = time.Duration(pacing) * time.Second

	poll, err := getEnvInt("POLL_INTERVAL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	if poll <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must be positive, got %d", poll)
	}
	cfg.PollInterval = time.Duration(poll) * time.Second

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an optional integer setting. A set but malformed value is
// an error rather than a silent fall back to the default.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %v", key, err)
	}
	return n, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.ChannelID == "" {
		return fmt.Errorf("CHANNEL_ID is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.EmbedEndpoint == "" {
		return fmt.Errorf("EMBED_ENDPOINT is required")
	}
	if len(c.FeedURLs) == 0 {
		return fmt.Errorf("RSS_FEED_URLS is required")
	}
	return nil
}
