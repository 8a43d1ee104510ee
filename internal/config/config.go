package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig      `yaml:"server"`
	HTTP         HTTPConfig        `yaml:"http"`
	Database     DatabaseConfig    `yaml:"database"`
	JWT          JWTConfig         `yaml:"jwt"`
	Log          LogConfig         `yaml:"log"`
	Deal         DealConfig        `yaml:"deal"`
	Installments InstallmentConfig `yaml:"installments"`
	Wallet       WalletConfig      `yaml:"wallet"`
	Audit        AuditConfig       `yaml:"audit"`
	Scheduler    SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains gRPC server settings
type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

// HTTPConfig contains the side server for public deal views, health and metrics
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST"`
	Port int    `yaml:"port" env:"HTTP_PORT"`
}

// DatabaseConfig selects the SQL backend. Driver is "postgres" or "sqlite".
// For postgres either DSN or the discrete connection fields are used; for
// sqlite DSN is a file path or ":memory:".
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	Migrate  bool   `yaml:"migrate" env:"DB_MIGRATE"` // apply embedded schema on startup
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes" env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

type DealConfig struct {
	ReservationDuration time.Duration `yaml:"reservation_duration" env:"DEAL_RESERVATION_DURATION"`
}

type InstallmentConfig struct {
	Interval       time.Duration `yaml:"interval" env:"INSTALLMENTS_INTERVAL"`
	MilestoneGrace time.Duration `yaml:"milestone_grace" env:"INSTALLMENTS_MILESTONE_GRACE"`
}

type WalletConfig struct {
	PromotionPolicy string `yaml:"promotion_policy" env:"WALLET_PROMOTION_POLICY"` // "immediate" or "final_approval"
}

type AuditConfig struct {
	Workers      int           `yaml:"workers" env:"AUDIT_WORKERS"`
	QueueSize    int           `yaml:"queue_size" env:"AUDIT_QUEUE_SIZE"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"AUDIT_WRITE_TIMEOUT"`
}

// SchedulerConfig contains cron schedule settings (with seconds, UTC)
type SchedulerConfig struct {
	ReleaseExpiredReservations string `yaml:"release_expired_reservations" env:"SCHEDULE_RELEASE_EXPIRED_RESERVATIONS"`
	MarkOverdueInstallments    string `yaml:"mark_overdue_installments" env:"SCHEDULE_MARK_OVERDUE_INSTALLMENTS"`
}

// Load reads configuration from a YAML file, then applies environment
// variables (a .env file in the working directory is honoured) and defaults.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate fills defaults and checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 50051
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}

	// Database validation
	switch c.Database.Driver {
	case "":
		c.Database.Driver = "postgres"
		fallthrough
	case "postgres":
		if c.Database.DSN == "" {
			if c.Database.Host == "" {
				return fmt.Errorf("database host is required")
			}
			if c.Database.User == "" {
				return fmt.Errorf("database user is required")
			}
			if c.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	case "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Ledger defaults
	if c.Deal.ReservationDuration == 0 {
		c.Deal.ReservationDuration = 72 * time.Hour
	}
	if c.Deal.ReservationDuration < 0 {
		return fmt.Errorf("reservation duration must be positive")
	}
	if c.Installments.Interval == 0 {
		c.Installments.Interval = 30 * 24 * time.Hour
	}
	if c.Installments.Interval < 0 {
		return fmt.Errorf("installment interval must be positive")
	}
	if c.Installments.MilestoneGrace == 0 {
		c.Installments.MilestoneGrace = 14 * 24 * time.Hour
	}
	if c.Installments.MilestoneGrace < 0 {
		return fmt.Errorf("milestone grace must not be negative")
	}
	switch c.Wallet.PromotionPolicy {
	case "":
		c.Wallet.PromotionPolicy = "final_approval"
	case "immediate", "final_approval":
	default:
		return fmt.Errorf("unknown promotion policy: %s", c.Wallet.PromotionPolicy)
	}

	if c.Audit.Workers == 0 {
		c.Audit.Workers = 2
	}
	if c.Audit.QueueSize == 0 {
		c.Audit.QueueSize = 1024
	}
	if c.Audit.WriteTimeout == 0 {
		c.Audit.WriteTimeout = 5 * time.Second
	}

	// Scheduler defaults
	if c.Scheduler.ReleaseExpiredReservations == "" {
		c.Scheduler.ReleaseExpiredReservations = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.MarkOverdueInstallments == "" {
		c.Scheduler.MarkOverdueInstallments = "0 0 1 * * *" // 1 AM UTC
	}

	return nil
}

// GetDatabaseDSN returns the data source name for the configured driver
func (c *Config) GetDatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the HTTP side server address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
