package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"weather-agent/internal/weather"
	"weather-agent/internal/weatherapi"
)

// AppConfig holds all configuration for the agent. It is constructed once
// at startup and read-only afterwards; every component receives the piece
// it needs explicitly instead of reading globals.
type AppConfig struct {
	OpenWeatherAPIKey string
	GeminiAPIKey      string
	GeminiModel       string
	RedisAddr         string
	Port              string
	DefaultUnits      weather.Units

	Provider           weatherapi.Config
	MaxToolRounds      int
	SessionTTL         time.Duration
	SessionMaxMessages int
}

// fileConfig is the optional config.yaml shape. Durations are strings in
// Go syntax ("5s", "500ms") because yaml.v3 has no native duration type.
type fileConfig struct {
	Provider struct {
		BaseURL        string `yaml:"base_url"`
		Timeout        string `yaml:"timeout"`
		MaxRetries     *int   `yaml:"max_retries"`
		InitialBackoff string `yaml:"initial_backoff"`
		MaxBackoff     string `yaml:"max_backoff"`
	} `yaml:"provider"`
	Agent struct {
		MaxToolRounds int `yaml:"max_tool_rounds"`
	} `yaml:"agent"`
	Session struct {
		TTL         string `yaml:"ttl"`
		MaxMessages int    `yaml:"max_messages"`
	} `yaml:"session"`
}

// LoadConfig loads configuration from a .env file (local development only),
// environment variables, and an optional config.yaml.
func LoadConfig() (*AppConfig, error) {
	// In containers (GIN_MODE=release) configuration arrives as real
	// environment variables; only local development uses a .env file.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenvDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		RedisAddr:         getenvDefault("REDIS_ADDR", "localhost:6379"),
		Port:              getenvDefault("PORT", "8080"),

		MaxToolRounds:      6,
		SessionTTL:         24 * time.Hour,
		SessionMaxMessages: 50,
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY environment variable is not set")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	units, err := weather.ParseUnits(os.Getenv("DEFAULT_UNITS"), weather.UnitsMetric)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNITS: %w", err)
	}
	cfg.DefaultUnits = units

	cfg.Provider = weatherapi.Config{
		APIKey:         cfg.OpenWeatherAPIKey,
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}

	if err := applyFileConfig(cfg, getenvDefault("CONFIG_FILE", "config.yaml")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFileConfig overlays config.yaml values onto the defaults. A missing
// file is fine; a malformed one is a startup error.
func applyFileConfig(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.Provider.BaseURL != "" {
		cfg.Provider.BaseURL = fc.Provider.BaseURL
	}
	if fc.Provider.MaxRetries != nil {
		cfg.Provider.MaxRetries = *fc.Provider.MaxRetries
	}
	if err := overlayDuration(&cfg.Provider.Timeout, fc.Provider.Timeout, "provider.timeout"); err != nil {
		return err
	}
	if err := overlayDuration(&cfg.Provider.InitialBackoff, fc.Provider.InitialBackoff, "provider.initial_backoff"); err != nil {
		return err
	}
	if err := overlayDuration(&cfg.Provider.MaxBackoff, fc.Provider.MaxBackoff, "provider.max_backoff"); err != nil {
		return err
	}

	if fc.Agent.MaxToolRounds > 0 {
		cfg.MaxToolRounds = fc.Agent.MaxToolRounds
	}
	if err := overlayDuration(&cfg.SessionTTL, fc.Session.TTL, "session.ttl"); err != nil {
		return err
	}
	if fc.Session.MaxMessages > 0 {
		cfg.SessionMaxMessages = fc.Session.MaxMessages
	}
	return nil
}

func overlayDuration(dst *time.Duration, value, name string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
