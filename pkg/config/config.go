package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CollectorWebhook  = "webhook"
	CollectorAirtable = "airtable"
)

// Config holds all application configuration values
type Config struct {
	Port     string `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`

	CollectorKind    string        `yaml:"collector_kind"`
	CollectorURL     string        `yaml:"collector_url"`
	CollectorTimeout time.Duration `yaml:"collector_timeout"`

	AirtableAPIKey     string `yaml:"airtable_api_key"`
	AirtableBaseID     string `yaml:"airtable_base_id"`
	AirtableLeadsTable string `yaml:"airtable_leads_table"`

	CORSAllowedOrigin string        `yaml:"cors_allowed_origin"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	RateLimitRPS      float64       `yaml:"rate_limit_rps"`
	RateLimitBurst    int           `yaml:"rate_limit_burst"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:               "8080",
		GinMode:            "release",
		LogLevel:           "info",
		CollectorKind:      CollectorWebhook,
		CollectorTimeout:   15 * time.Second,
		AirtableLeadsTable: "Leads",
		CORSAllowedOrigin:  "*",
		SessionTTL:         30 * time.Minute,
		RateLimitRPS:       1,
		RateLimitBurst:     5,
	}
}

// LoadConfig reads configuration from the optional CONFIG_FILE, then from
// environment variables (a .env file is loaded first if present)
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.CollectorKind, "COLLECTOR_KIND")
	setString(&c.CollectorURL, "COLLECTOR_URL")
	setString(&c.AirtableAPIKey, "AIRTABLE_API_KEY")
	setString(&c.AirtableBaseID, "AIRTABLE_BASE_ID")
	setString(&c.AirtableLeadsTable, "AIRTABLE_LEADS_TABLE")
	setString(&c.CORSAllowedOrigin, "CORS_ALLOWED_ORIGIN")

	if err := setDuration(&c.CollectorTimeout, "COLLECTOR_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&c.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.RateLimitBurst = burst
	}
	return nil
}

// Validate checks that the selected collector is fully configured
func (c *Config) Validate() error {
	switch c.CollectorKind {
	case CollectorWebhook:
		if c.CollectorURL == "" {
			return fmt.Errorf("missing required setting: COLLECTOR_URL")
		}
	case CollectorAirtable:
		if c.AirtableAPIKey == "" || c.AirtableBaseID == "" {
			return fmt.Errorf("missing required settings: AIRTABLE_API_KEY and AIRTABLE_BASE_ID")
		}
	default:
		return fmt.Errorf("unknown COLLECTOR_KIND %q", c.CollectorKind)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
