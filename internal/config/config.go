package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	FetchTimeout     time.Duration
	FetchConcurrency int
	FeedCacheSize    int
	FeedCacheTTL     time.Duration
	WebhookTimeout   time.Duration
	AirNowAPIKey     string

	// AlertsConfig is the path of the YAML alert-rule file.
	AlertsConfig string

	PremiumAPIKeys []string
	DefaultTier    string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Alert publication is enabled when brokers are set.
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	webhookTimeout, err := parsePositiveDuration("WEBHOOK_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	// A zero TTL disables the feed cache.
	feedCacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_CACHE_TTL", "60s"))
	if err != nil || feedCacheTTL < 0 {
		return nil, errors.New("invalid FEED_CACHE_TTL")
	}

	concurrency, err := parsePositiveInt("FETCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	feedCacheSize, err := parsePositiveInt("FEED_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	alertsConfig := os.Getenv("ALERTS_CONFIG")
	if alertsConfig == "" {
		alertsConfig = sharedcfg.EnvOrDefault("WEMS_CONFIG", "config.yaml")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FetchTimeout:     fetchTimeout,
		FetchConcurrency: concurrency,
		FeedCacheSize:    feedCacheSize,
		FeedCacheTTL:     feedCacheTTL,
		WebhookTimeout:   webhookTimeout,
		AirNowAPIKey:     os.Getenv("AIRNOW_API_KEY"),

		AlertsConfig: alertsConfig,

		PremiumAPIKeys: sharedcfg.ParseBrokers(os.Getenv("PREMIUM_API_KEYS")),
		DefaultTier:    strings.ToLower(sharedcfg.EnvOrDefault("DEFAULT_TIER", "free")),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "hazard-alerts"),
	}

	if cfg.DefaultTier != "free" && cfg.DefaultTier != "premium" {
		return nil, fmt.Errorf("invalid DEFAULT_TIER %q: must be free or premium", cfg.DefaultTier)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// TierFor resolves the tier of a request from its API key.
func (c *Config) TierFor(apiKey string) string {
	if apiKey != "" && slices.Contains(c.PremiumAPIKeys, apiKey) {
		return "premium"
	}
	return c.DefaultTier
}

// PublishAlerts reports whether fired alerts go to Kafka.
func (c *Config) PublishAlerts() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
