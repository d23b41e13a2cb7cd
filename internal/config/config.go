package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	MongoDBURI      string
	MongoDBPassword string

	// External auth provider: JWKS endpoint for token validation, or a
	// shared HS256 secret for development.
	AuthJWKSURL string
	TokenSecret string

	RazorpayKeyID     string
	RazorpayKeySecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	AdminEmail   string

	// SweepInterval bounds how stale an expired booking can get before
	// the sweeper cancels it.
	SweepInterval time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		AuthJWKSURL:     os.Getenv("AUTH_JWKS_URL"),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    getEnvWithDefault("EMAIL_FROM", "bookings@venuebook.in"),
		AdminEmail:   getEnvWithDefault("ADMIN_EMAIL", "admin@venuebook.in"),
	}

	interval, err := time.ParseDuration(getEnvWithDefault("SWEEP_INTERVAL", "1h"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be a positive duration")
	}
	cfg.SweepInterval = interval

	smtpPort := getEnvWithDefault("SMTP_PORT", "587")
	if _, err := fmt.Sscanf(smtpPort, "%d", &cfg.SMTPPort); err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be numeric")
	}

	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if cfg.AuthJWKSURL == "" && cfg.TokenSecret == "" {
		return nil, fmt.Errorf("either AUTH_JWKS_URL or TOKEN_SECRET is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
