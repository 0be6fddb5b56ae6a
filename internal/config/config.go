package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Hospital management system (upstream API)
	HMSBaseURL string
	HMSToken   string
	HMSTimeout time.Duration

	// Razorpay hosted checkout
	RazorpayKeyID      string
	CheckoutThemeColor string
	HospitalName       string

	// Booking wizard
	BookingTTL          time.Duration
	PaymentAbandonAfter time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// SendGrid email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables. A .env file is
// honored when present so local development matches deployed behavior.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		HMSBaseURL: getEnv("HMS_BASE_URL", ""),
		HMSToken:   getEnv("HMS_API_TOKEN", ""),
		HMSTimeout: getEnvAsDuration("HMS_TIMEOUT", 15*time.Second),

		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		CheckoutThemeColor: getEnv("CHECKOUT_THEME_COLOR", "#0e7490"),
		HospitalName:       getEnv("HOSPITAL_NAME", "CarePort Hospital"),

		BookingTTL:          getEnvAsDuration("BOOKING_TTL", 45*time.Minute),
		PaymentAbandonAfter: getEnvAsDuration("PAYMENT_ABANDON_AFTER", 15*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "CarePort Bookings"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
