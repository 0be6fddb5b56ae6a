package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 15*time.Second, cfg.HMSTimeout)
	assert.Equal(t, 45*time.Minute, cfg.BookingTTL)
	assert.Equal(t, 15*time.Minute, cfg.PaymentAbandonAfter)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HMS_BASE_URL", "https://hms.example.com")
	t.Setenv("HMS_TIMEOUT", "5s")
	t.Setenv("PAYMENT_ABANDON_AFTER", "3m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	assert.Equal(t, "https://hms.example.com", cfg.HMSBaseURL)
	assert.Equal(t, 5*time.Second, cfg.HMSTimeout)
	assert.Equal(t, 3*time.Minute, cfg.PaymentAbandonAfter)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.RedisTLS)
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv("HMS_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 15*time.Second, cfg.HMSTimeout)
}
