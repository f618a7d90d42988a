package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultJWTSecret = "your-super-secret-key-change-this-in-production"
)

type Config struct {
	// Database
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Security
	JWTSecret         string
	TokenTTLHours     int
	AdminUsername     string
	AdminPasswordHash string

	// Application
	AppEnv      string
	AppPort     string
	LogLevel    string
	FrontendURL string

	// Rate Limiting
	RateLimitPerIP         int
	RateLimitWindowMinutes int

	// Telegram announcements
	TelegramBotToken  string
	TelegramChannelID int64

	// Game rules
	DefaultTravelDays         int
	DistanceTablePath         string
	DeductConstructionCredits bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "spacemap"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "spacemap_db"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:         getEnv("JWT_SECRET_KEY", ""),
		TokenTTLHours:     getEnvInt("TOKEN_TTL_HOURS", 7*24),
		AdminUsername:     getEnv("ADMIN_USERNAME", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		AppEnv:      getEnv("APP_ENV", "development"),
		AppPort:     getEnv("APP_PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		RateLimitPerIP:         getEnvInt("RATE_LIMIT_PER_IP", 100),
		RateLimitWindowMinutes: getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		DefaultTravelDays:         getEnvInt("DEFAULT_TRAVEL_DAYS", 5),
		DistanceTablePath:         getEnv("DISTANCE_TABLE_PATH", ""),
		DeductConstructionCredits: getEnvBool("DEDUCT_CONSTRUCTION_CREDITS", false),
	}

	channelStr := getEnv("TELEGRAM_CHANNEL_ID", "")
	if channelStr != "" {
		id, err := strconv.ParseInt(channelStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHANNEL_ID: %w", err)
		}
		cfg.TelegramChannelID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StoreDriver != StoreDriverPostgres && c.StoreDriver != StoreDriverMemory {
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}
	if c.StoreDriver == StoreDriverPostgres && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	if (c.AdminUsername == "") != (c.AdminPasswordHash == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD_HASH must be set together")
	}
	if c.DefaultTravelDays < 0 {
		return fmt.Errorf("DEFAULT_TRAVEL_DAYS must not be negative")
	}
	if c.RateLimitPerIP <= 0 || c.RateLimitWindowMinutes <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.StoreDriver != StoreDriverPostgres {
		return fmt.Errorf("STORE_DRIVER must be 'postgres' in production")
	}
	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET_KEY must be changed from default in production")
	}
	if c.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME must be set in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetTokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) GetRateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMinutes) * time.Minute
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChannelID != 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
