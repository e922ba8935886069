package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Payment     PaymentConfig
	Courier     CourierConfig
	Redis       RedisConfig
	Auth        AuthConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PaymentConfig configures the inbound payment-gateway webhook.
type PaymentConfig struct {
	// WebhookSecret is the shared HMAC-SHA256 secret for webhook signatures.
	WebhookSecret string
	// SignatureHeader carries the hex-encoded HMAC of the raw body.
	SignatureHeader string
}

// CourierConfig is used to call the shipment aggregator (create shipment,
// assign AWB, fetch tracking).
type CourierConfig struct {
	BaseURL        string // empty means shipment creation is flagged, never attempted
	Email          string
	Password       string
	PickupLocation string
	Timeout        time.Duration
}

// RedisConfig configures the optional webhook dedup ledger. Empty Addr
// disables the ledger; the paid-status guard alone then provides idempotency.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// JWTSecret signs storefront session tokens.
	JWTSecret string
	// OperatorKeySalt is mixed into SHA-256 lookup hashes for operator API keys.
	OperatorKeySalt string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PAYMENT_SIGNATURE_HEADER", "X-Razorpay-Signature")
	viper.SetDefault("COURIER_TIMEOUT_SECONDS", "30")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	courierTimeout := viper.GetInt("COURIER_TIMEOUT_SECONDS")
	if courierTimeout <= 0 {
		courierTimeout = 30
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Payment: PaymentConfig{
			WebhookSecret:   strings.TrimSpace(getEnvOrViper("PAYMENT_WEBHOOK_SECRET", "")),
			SignatureHeader: getEnvOrViper("PAYMENT_SIGNATURE_HEADER", "X-Razorpay-Signature"),
		},
		Courier: CourierConfig{
			BaseURL:        strings.TrimSpace(getEnvOrViper("COURIER_BASE_URL", "")),
			Email:          strings.TrimSpace(getEnvOrViper("COURIER_EMAIL", "")),
			Password:       strings.TrimSpace(getEnvOrViper("COURIER_PASSWORD", "")),
			PickupLocation: getEnvOrViper("COURIER_PICKUP_LOCATION", "Primary"),
			Timeout:        time.Duration(courierTimeout) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnvOrViper("JWT_SECRET", ""),
			OperatorKeySalt: getEnvOrViper("OPERATOR_KEY_SALT", "default-salt-change-in-production"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Payment.WebhookSecret == "" {
		return nil, fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
