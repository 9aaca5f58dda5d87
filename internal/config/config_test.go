package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("GMAIL_USER", "parking@example.com")
	t.Setenv("ALERT_RECEIVER_EMAIL", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 9600, cfg.SerialBaudRate)
	assert.Equal(t, "parking@example.com", cfg.SMTPUser)
	assert.Equal(t, "parking@example.com", cfg.AlertReceiverEmail)
	assert.NotEmpty(t, cfg.CORSOriginPatterns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SERIAL_PORT", "/dev/ttyACM0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("DB_POOL_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.PoolSize)
}
