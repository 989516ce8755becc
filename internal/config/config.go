package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage drivers understood by the repository layer
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds application configuration
type Config struct {
	Port               string        `toml:"port"`
	LogLevel           string        `toml:"log_level"`
	JWTSecret          string        `toml:"jwt_secret"`
	TokenTTL           time.Duration `toml:"-"`
	BcryptCost         int           `toml:"bcrypt_cost"`
	StorageDriver      string        `toml:"storage_driver"`
	DataFile           string        `toml:"data_file"`
	DBConn             string        `toml:"db_conn"`
	GenericLoginErrors bool          `toml:"generic_login_errors"`
	ReminderSchedule   string        `toml:"reminder_schedule"`
	SMTPHost           string        `toml:"smtp_host"`
	SMTPPort           string        `toml:"smtp_port"`
	SMTPUsername       string        `toml:"smtp_username"`
	SMTPPassword       string        `toml:"smtp_password"`
	SenderEmail        string        `toml:"sender_email"`
}

func defaults() *Config {
	return &Config{
		Port:          "5000",
		LogLevel:      "INFO",
		JWTSecret:     "secret",
		TokenTTL:      24 * time.Hour,
		BcryptCost:    10,
		StorageDriver: DriverMemory,
		DataFile:      "db.json",
		SMTPPort:      "587",
	}
}

// NewConfig loads configuration from an optional TOML file (CONFIG_FILE)
// and then from environment variables, which take precedence.
func NewConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.DataFile = getEnv("DATA_FILE", cfg.DataFile)
	cfg.DBConn = getEnv("DB_CONN", cfg.DBConn)
	cfg.ReminderSchedule = getEnv("REMINDER_SCHEDULE", cfg.ReminderSchedule)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SenderEmail = getEnv("SENDER_EMAIL", cfg.SenderEmail)

	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		cfg.TokenTTL = ttl
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		cfg.BcryptCost = cost
	}
	if v, ok := os.LookupEnv("GENERIC_LOGIN_ERRORS"); ok {
		generic, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid GENERIC_LOGIN_ERRORS %q: %w", v, err)
		}
		cfg.GenericLoginErrors = generic
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RemindersEnabled reports whether the due-date reminder job should run
func (c *Config) RemindersEnabled() bool {
	return c.ReminderSchedule != "" && c.SMTPHost != ""
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	// bcrypt accepts costs in [4, 31]
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file storage driver")
		}
	case DriverPostgres, DriverSQLite:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required for the %s storage driver", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.RemindersEnabled() && c.SenderEmail == "" {
		return fmt.Errorf("SENDER_EMAIL is required when reminders are enabled")
	}
	return nil
}

// loadFile decodes TOML values over cfg. token_ttl is a duration string.
func loadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}

	var extra struct {
		TokenTTL string `toml:"token_ttl"`
	}
	if _, err := toml.DecodeFile(path, &extra); err != nil {
		return err
	}
	if extra.TokenTTL != "" {
		ttl, err := time.ParseDuration(extra.TokenTTL)
		if err != nil {
			return fmt.Errorf("invalid token_ttl %q: %w", extra.TokenTTL, err)
		}
		cfg.TokenTTL = ttl
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
