package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config carries everything the API server needs from the environment.
type Config struct {
	Port string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	AdminUsername string
	AdminPassword string // plaintext or bcrypt hash
	VaultPIN      string

	// DataPath is the JSON document used by the file-backed store.
	// Ignored when DatabaseDSN is set.
	DataPath    string
	DatabaseDSN string
	KVTable     string

	SheetURL      string
	CompanyName   string
	PublicBaseURL string
	CatalogPath   string

	MetricsEnabled bool
	ImageMaxBytes  int64
}

func Load() *Config {
	config := &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTIssuer:     getEnv("JWT_ISS", "pm-dashboard-api"),
		JWTAudience:   getEnv("JWT_AUD", "pm-dashboard-api"),
		JWTExpiry:     24 * time.Hour, // Default to 24 hours
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "tci@1234"),
		VaultPIN:      getEnv("VAULT_PIN", "1234"),
		DataPath:      getEnv("DATA_PATH", "pm_dashboard_data.json"),
		DatabaseDSN:   os.Getenv("DB_DSN"),
		KVTable:       getEnv("KV_TABLE", "pm_kv"),
		SheetURL:      os.Getenv("SHEET_URL"),
		CompanyName:   getEnv("COMPANY_NAME", "TCI"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
		ImageMaxBytes: 1536 * 1024,
	}

	// Parse JWT expiry from environment if provided
	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	if v := os.Getenv("ENABLE_METRICS"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			config.MetricsEnabled = enabled
		}
	}

	if v := os.Getenv("IMAGE_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.ImageMaxBytes = n
		}
	}

	return config
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if os.Getenv("ENVIRONMENT") == "production" && c.JWTSecret == "your-secret-key-change-in-production" {
		return errors.New("JWT_SECRET must be changed from the default in production")
	}
	if c.JWTIssuer == "" || c.JWTAudience == "" {
		return errors.New("JWT_ISS and JWT_AUD are required")
	}
	if c.JWTExpiry < time.Minute || c.JWTExpiry > 30*24*time.Hour {
		return errors.New("JWT_EXPIRY must be between 1 minute and 30 days")
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}
	if c.VaultPIN == "" {
		return errors.New("VAULT_PIN is required")
	}
	if c.DatabaseDSN == "" && c.DataPath == "" {
		return errors.New("one of DB_DSN or DATA_PATH is required")
	}
	return nil
}

// LoadAndValidate is the main-path entry point.
func LoadAndValidate() (*Config, error) {
	config := Load()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
