package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Coupon handling modes for enrollment.
const (
	CouponModeLenient = "lenient"
	CouponModeStrict  = "strict"
)

// LoadENV loads variables from .env when GO_ENV is unset or "development".
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	LOG_MODE     string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT
	JWT_SECRET      string
	JWT_ISSUER      string
	JWT_ACCESS_TTL  time.Duration
	JWT_REFRESH_TTL time.Duration
	// Redis
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS string
	// Enrollment & payments
	COUPON_MODE            string
	PAYMENT_WEBHOOK_SECRET string
	PENDING_PAYMENT_TTL    time.Duration
	// Object storage (S3 compatible)
	SPACES_ENDPOINT   string
	SPACES_REGION     string
	SPACES_BUCKET     string
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	MEDIA_URL_TTL     time.Duration
	// Email
	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USERNAME string
	SMTP_PASSWORD string
	SMTP_FROM     string
	APP_URL       string
	// Seeding
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	// Background jobs
	CRON_ENABLED bool
}

func Get() (*EnvironmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	couponMode := strings.ToLower(os.Getenv("COUPON_MODE"))
	if couponMode != CouponModeStrict {
		couponMode = CouponModeLenient
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		LOG_MODE:     getOrDefault("LOG_MODE", os.Getenv("GO_ENV")),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getOrDefault("DB_SSL_MODE", "disable"),
		PORT:         port,
		// JWT
		JWT_SECRET:      os.Getenv("JWT_SECRET"),
		JWT_ISSUER:      getOrDefault("JWT_ISSUER", "learnhub-api"),
		JWT_ACCESS_TTL:  getDuration("JWT_ACCESS_TTL", 24*time.Hour),
		JWT_REFRESH_TTL: getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		// Redis
		REDIS_URL: getOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		// HTTP
		ALLOWED_ORIGINS: getOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		// Enrollment & payments
		COUPON_MODE:            couponMode,
		PAYMENT_WEBHOOK_SECRET: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		PENDING_PAYMENT_TTL:    getDuration("PENDING_PAYMENT_TTL", 24*time.Hour),
		// Object storage
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
		SPACES_REGION:     getOrDefault("SPACES_REGION", "us-east-1"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		MEDIA_URL_TTL:     getDuration("MEDIA_URL_TTL", 15*time.Minute),
		// Email
		SMTP_HOST:     getOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTP_PORT:     smtpPort,
		SMTP_USERNAME: os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     getOrDefault("SMTP_FROM", "noreply@learnhub.dev"),
		APP_URL:       getOrDefault("APP_URL", "http://localhost:3000"),
		// Seeding
		ADMIN_EMAIL:    os.Getenv("ADMIN_EMAIL"),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		// Background jobs
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false", // Default to enabled
	}

	return envVariables, nil
}

// DSN builds the PostgreSQL connection string shared by the GORM and lib/pq stores.
func (e *EnvironmentVariable) DSN() string {
	return "host=" + e.DB_HOST +
		" user=" + e.DB_USER_NAME +
		" password=" + e.DB_PASSWORD +
		" dbname=" + e.DB_NAME +
		" port=" + e.DB_PORT +
		" sslmode=" + e.DB_SSL_MODE +
		" TimeZone=UTC"
}

func getOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal
	}
	return d
}
