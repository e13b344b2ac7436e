// Package config loads service configuration from environment variables
// with an optional YAML file overlay, and watches the file for runtime
// changes to the loop timings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `validate:"required"`
	Environment   string `validate:"oneof=development staging production"`
	LogLevel      string
	EnableCORS    bool

	// Authentication for the re-discovery trigger; empty disables it
	JWTSecret string
	JWTIssuer string

	// Exploration loop
	RefreshInterval time.Duration
	ErrorBackoff    time.Duration

	// Upstream sources
	UpstreamTimeout time.Duration
	MarketPages     int     `validate:"gte=1,lte=10"`
	MarketPageSize  int     `validate:"gte=1,lte=250"`
	UpstreamRate    float64 `validate:"gt=0"`
	FeedURLs        []string
	ArxivCategories []string

	// Insight retention
	InsightCap  int `validate:"gte=1"`
	InsightTrim int `validate:"gte=1"`

	// Path of the YAML file the config was loaded from, empty when none
	sourceFile string
}

// fileConfig is the YAML shape of the optional config file. Pointer fields
// distinguish "absent" from zero values, and durations come in as strings
// like "5m" because yaml.v3 cannot decode those into time.Duration.
type fileConfig struct {
	ServerAddress   *string  `yaml:"server_address"`
	Environment     *string  `yaml:"environment"`
	LogLevel        *string  `yaml:"log_level"`
	EnableCORS      *bool    `yaml:"enable_cors"`
	JWTSecret       *string  `yaml:"jwt_secret"`
	JWTIssuer       *string  `yaml:"jwt_issuer"`
	RefreshInterval *string  `yaml:"refresh_interval"`
	ErrorBackoff    *string  `yaml:"error_backoff"`
	UpstreamTimeout *string  `yaml:"upstream_timeout"`
	MarketPages     *int     `yaml:"market_pages"`
	MarketPageSize  *int     `yaml:"market_page_size"`
	UpstreamRate    *float64 `yaml:"upstream_rate"`
	FeedURLs        []string `yaml:"feed_urls"`
	ArxivCategories []string `yaml:"arxiv_categories"`
	InsightCap      *int     `yaml:"insight_cap"`
	InsightTrim     *int     `yaml:"insight_trim"`
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.ServerAddress != nil {
		cfg.ServerAddress = *fc.ServerAddress
	}
	if fc.Environment != nil {
		cfg.Environment = *fc.Environment
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.EnableCORS != nil {
		cfg.EnableCORS = *fc.EnableCORS
	}
	if fc.JWTSecret != nil {
		cfg.JWTSecret = *fc.JWTSecret
	}
	if fc.JWTIssuer != nil {
		cfg.JWTIssuer = *fc.JWTIssuer
	}
	if err := applyDuration(&cfg.RefreshInterval, "refresh_interval", fc.RefreshInterval); err != nil {
		return err
	}
	if err := applyDuration(&cfg.ErrorBackoff, "error_backoff", fc.ErrorBackoff); err != nil {
		return err
	}
	if err := applyDuration(&cfg.UpstreamTimeout, "upstream_timeout", fc.UpstreamTimeout); err != nil {
		return err
	}
	if fc.MarketPages != nil {
		cfg.MarketPages = *fc.MarketPages
	}
	if fc.MarketPageSize != nil {
		cfg.MarketPageSize = *fc.MarketPageSize
	}
	if fc.UpstreamRate != nil {
		cfg.UpstreamRate = *fc.UpstreamRate
	}
	if len(fc.FeedURLs) > 0 {
		cfg.FeedURLs = fc.FeedURLs
	}
	if len(fc.ArxivCategories) > 0 {
		cfg.ArxivCategories = fc.ArxivCategories
	}
	if fc.InsightCap != nil {
		cfg.InsightCap = *fc.InsightCap
	}
	if fc.InsightTrim != nil {
		cfg.InsightTrim = *fc.InsightTrim
	}
	return nil
}

func applyDuration(dst *time.Duration, field string, raw *string) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}

// LoadConfig loads configuration: defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variable overrides.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		LogLevel:        "info",
		EnableCORS:      true,
		JWTIssuer:       "explorer-backend",
		RefreshInterval: 5 * time.Minute,
		ErrorBackoff:    10 * time.Minute,
		UpstreamTimeout: 10 * time.Second,
		MarketPages:     2,
		MarketPageSize:  250,
		UpstreamRate:    1.0,
		InsightCap:      20,
		InsightTrim:     10,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, fmt.Errorf("apply config file: %w", err)
		}
		cfg.sourceFile = path
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.ErrorBackoff = getEnvDuration("ERROR_BACKOFF", cfg.ErrorBackoff)
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.MarketPages = getEnvInt("MARKET_PAGES", cfg.MarketPages)
	cfg.MarketPageSize = getEnvInt("MARKET_PAGE_SIZE", cfg.MarketPageSize)
	if urls := getEnv("FEED_URLS", ""); urls != "" {
		cfg.FeedURLs = splitAndTrim(urls)
	}
	if categories := getEnv("ARXIV_CATEGORIES", ""); categories != "" {
		cfg.ArxivCategories = splitAndTrim(categories)
	}
	cfg.InsightCap = getEnvInt("INSIGHT_CAP", cfg.InsightCap)
	cfg.InsightTrim = getEnvInt("INSIGHT_TRIM", cfg.InsightTrim)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present and coherent
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh_interval must be at least 1s, got %s", c.RefreshInterval)
	}
	if c.ErrorBackoff < c.RefreshInterval {
		return fmt.Errorf("error_backoff must not be shorter than refresh_interval")
	}
	if c.InsightTrim > c.InsightCap {
		return fmt.Errorf("insight_trim (%d) must not exceed insight_cap (%d)", c.InsightTrim, c.InsightCap)
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// SourceFile returns the YAML file path the config was loaded from, if any.
func (c *Config) SourceFile() string {
	return c.sourceFile
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
