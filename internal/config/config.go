package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Payment    PaymentConfig    `mapstructure:"payment"`
	Seller     SellerConfig     `mapstructure:"seller"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PaymentConfig holds gateway endpoints and credentials
type PaymentConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Moyasar GatewayConfig `mapstructure:"moyasar"`
	Tap     GatewayConfig `mapstructure:"tap"`
}

// GatewayConfig holds one gateway's endpoint and secret
type GatewayConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	SecretKey string `mapstructure:"secret_key"`
}

// SellerConfig is the default seller printed on invoices and QR codes
type SellerConfig struct {
	Name      string `mapstructure:"name"`
	VATNumber string `mapstructure:"vat_number"`
}

// ComplianceConfig points at an optional rule-set override file
type ComplianceConfig struct {
	RulesPath string `mapstructure:"rules_path"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration from file and environment variables. A .env file
// in the working directory is applied to the environment first. An empty
// configPath means defaults plus environment only.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv applies path to the process environment without overriding
// variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Payment defaults
	v.SetDefault("payment.timeout", 10*time.Second)
	v.SetDefault("payment.moyasar.base_url", "https://api.moyasar.com")
	v.SetDefault("payment.moyasar.secret_key", "")
	v.SetDefault("payment.tap.base_url", "https://api.tap.company")
	v.SetDefault("payment.tap.secret_key", "")

	// Seller defaults
	v.SetDefault("seller.name", "")
	v.SetDefault("seller.vat_number", "")

	v.SetDefault("compliance.rules_path", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Sensitive credentials from environment
	_ = v.BindEnv("payment.moyasar.secret_key", "MOYASAR_SECRET_KEY")
	_ = v.BindEnv("payment.tap.secret_key", "TAP_SECRET_KEY")
	_ = v.BindEnv("seller.name", "SELLER_NAME")
	_ = v.BindEnv("seller.vat_number", "SELLER_VAT_NUMBER")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate checks structural values. Gateway secrets may be empty; a charge
// through a gateway without one fails at request time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("payment.timeout must be positive")
	}
	if c.Payment.Moyasar.BaseURL == "" {
		return fmt.Errorf("payment.moyasar.base_url is required")
	}
	if c.Payment.Tap.BaseURL == "" {
		return fmt.Errorf("payment.tap.base_url is required")
	}

	switch strings.ToLower(c.Logger.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}
