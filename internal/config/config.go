// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// BookingConfig describes the facility operating window and slot length.
// OpensAt and ClosesAt are HH:MM wall-clock values; ClosesAt is exclusive and
// may be "24:00".
type BookingConfig struct {
	OpensAt     string `yaml:"opens_at"`
	ClosesAt    string `yaml:"closes_at"`
	SlotMinutes int    `yaml:"slot_minutes"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Sender  string `yaml:"sender"`
	// Credentials loaded from environment
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

// RateLimitConfig throttles booking submissions per client.
type RateLimitConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds"`
	MaxPerHour      int `yaml:"max_per_hour"`
}

type JobsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Cron expression for the stale-request sweep
	ExpirySchedule string `yaml:"expiry_schedule"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Booking   BookingConfig   `yaml:"booking"`
	Email     EmailConfig     `yaml:"email"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Booking.OpensAt == "" {
		cfg.Booking.OpensAt = "08:00"
	}
	if cfg.Booking.ClosesAt == "" {
		cfg.Booking.ClosesAt = "24:00"
	}
	if cfg.Booking.SlotMinutes == 0 {
		cfg.Booking.SlotMinutes = 60
	}
	if cfg.RateLimit.CooldownSeconds == 0 {
		cfg.RateLimit.CooldownSeconds = 2
	}
	if cfg.RateLimit.MaxPerHour == 0 {
		cfg.RateLimit.MaxPerHour = 120
	}
	if cfg.Jobs.ExpirySchedule == "" {
		cfg.Jobs.ExpirySchedule = "0 3 * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}
	if c.Booking.SlotMinutes <= 0 || c.Booking.SlotMinutes > 24*60 {
		return fmt.Errorf("booking slot_minutes must be between 1 and 1440")
	}
	if c.RateLimit.CooldownSeconds < 0 {
		return fmt.Errorf("rate_limit cooldown_seconds must not be negative")
	}
	if c.RateLimit.MaxPerHour <= 0 {
		return fmt.Errorf("rate_limit max_per_hour must be positive")
	}
	if c.Email.Enabled {
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when email is enabled")
		}
		if c.Email.AccessKeyID == "" || c.Email.SecretAccessKey == "" {
			return fmt.Errorf("email credentials are required when email is enabled")
		}
	}
	return nil
}
