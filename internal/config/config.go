// Package config provides configuration management for the connector service
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yourfin-enon/coinspaid-connector/pkg/coinspaid"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the connector service
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	LogLevel     string        `yaml:"log_level"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig holds operator authentication configuration
type AuthConfig struct {
	JWTSecret            string        `yaml:"jwt_secret"`
	TokenExpiry          time.Duration `yaml:"token_expiry"`
	OperatorUsername     string        `yaml:"operator_username"`
	OperatorPasswordHash string        `yaml:"operator_password_hash"`
}

// GatewayConfig holds the CoinsPaid credentials and environment
type GatewayConfig struct {
	Environment string        `yaml:"environment"` // production or sandbox
	Host        string        `yaml:"host"`        // overrides the environment host
	PublicKey   string        `yaml:"public_key"`
	PrivateKey  string        `yaml:"private_key"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LimitsConfig bounds single withdrawal amounts, keyed by currency code
type LimitsConfig struct {
	Withdrawals map[string]AmountLimit `yaml:"withdrawals"`
}

// AmountLimit is an inclusive decimal range; an empty bound is unlimited
type AmountLimit struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			LogLevel:     "info",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			DSN:    "host=localhost dbname=coinspaid sslmode=disable",
		},
		Auth: AuthConfig{
			JWTSecret:        "coinspaid-dev-secret-change-in-production",
			TokenExpiry:      12 * time.Hour,
			OperatorUsername: "operator",
		},
		Gateway: GatewayConfig{
			Environment: "sandbox",
			Timeout:     30 * time.Second,
		},
	}
}

// Load loads configuration from environment with defaults.
// If COINSPAID_CONFIG names a YAML file it is applied before the environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("COINSPAID_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("COINSPAID_PORT", c.Server.Port)
	c.Server.LogLevel = getEnv("COINSPAID_LOG_LEVEL", c.Server.LogLevel)
	c.Database.Driver = getEnv("COINSPAID_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("COINSPAID_DB_DSN", c.Database.DSN)
	c.Auth.JWTSecret = getEnv("COINSPAID_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.OperatorUsername = getEnv("COINSPAID_OPERATOR_USERNAME", c.Auth.OperatorUsername)
	c.Auth.OperatorPasswordHash = getEnv("COINSPAID_OPERATOR_PASSWORD_HASH", c.Auth.OperatorPasswordHash)
	c.Gateway.Environment = getEnv("COINSPAID_ENVIRONMENT", c.Gateway.Environment)
	c.Gateway.Host = getEnv("COINSPAID_HOST", c.Gateway.Host)
	c.Gateway.PublicKey = getEnv("COINSPAID_PUBLIC_KEY", c.Gateway.PublicKey)
	c.Gateway.PrivateKey = getEnv("COINSPAID_PRIVATE_KEY", c.Gateway.PrivateKey)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch strings.ToLower(c.Gateway.Environment) {
	case "production", "sandbox":
	default:
		return fmt.Errorf("unknown gateway environment %q", c.Gateway.Environment)
	}
	if c.Gateway.PublicKey == "" || c.Gateway.PrivateKey == "" {
		return fmt.Errorf("gateway public and private keys are required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}

// ClientConfig builds the gateway client configuration
func (g GatewayConfig) ClientConfig() *coinspaid.ClientConfig {
	cfg := coinspaid.DefaultConfig()
	if strings.EqualFold(g.Environment, "sandbox") {
		cfg = coinspaid.SandboxConfig()
	}
	if g.Host != "" {
		cfg.Host = g.Host
	}
	if g.Timeout > 0 {
		cfg.Timeout = g.Timeout
	}
	cfg.PublicKey = g.PublicKey
	cfg.PrivateKey = g.PrivateKey
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
