package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	DatabaseURL string

	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	AlertReceiverEmail string

	SerialPort     string
	SerialBaudRate int

	JWTSecret string
	JWTExpiry time.Duration

	CORSAllowedOrigins []string
	CORSOriginPatterns []string
	RateLimitRPS       int

	LogLevel  string
	LogFormat string

	PoolSize        int
	PoolRecycle     time.Duration
	PoolPrePing     bool
	ConnectTimeout  time.Duration
	ApplicationName string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() AppConfig {
	_ = godotenv.Load()

	cfg := AppConfig{}
	cfg.Port = getenv("PORT", "3000")
	cfg.DatabaseURL = getenv("DATABASE_URL", defaultPgURL())

	cfg.SMTPHost = getenv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = getenvInt("SMTP_PORT", 587)
	cfg.SMTPUser = getenv("SMTP_USER", os.Getenv("GMAIL_USER"))
	cfg.SMTPPass = getenv("SMTP_PASS", os.Getenv("GMAIL_PASS"))
	cfg.AlertReceiverEmail = getenv("ALERT_RECEIVER_EMAIL", cfg.SMTPUser)

	cfg.SerialPort = getenv("SERIAL_PORT", "COM5")
	cfg.SerialBaudRate = getenvInt("SERIAL_BAUD_RATE", 9600)

	cfg.JWTSecret = getenv("JWT_SECRET", "dev-smart-parking-secret")
	cfg.JWTExpiry = time.Duration(getenvInt("JWT_EXPIRY_HOURS", 7*24)) * time.Hour

	cfg.CORSAllowedOrigins = getenvList("CORS_ALLOWED_ORIGINS", []string{
		"https://dacn-orcin.vercel.app",
		"https://awaited-easy-marten.ngrok-free.app",
	})
	cfg.CORSOriginPatterns = getenvList("CORS_ORIGIN_PATTERNS", []string{
		`^https://[a-z0-9-]+\.vercel\.app$`,
		`^https://[a-z0-9-]+\.ngrok-free\.app$`,
		`^https?://localhost(:\d+)?$`,
		`^https?://127\.0\.0\.1(:\d+)?$`,
	})
	cfg.RateLimitRPS = getenvInt("RATE_LIMIT_RPS", 20)

	cfg.LogLevel = getenv("LOG_LEVEL", "info")
	cfg.LogFormat = getenv("LOG_FORMAT", "json")

	cfg.PoolSize = getenvInt("DB_POOL_SIZE", 10)
	cfg.PoolRecycle = time.Duration(getenvInt("DB_POOL_RECYCLE_SECONDS", 300)) * time.Second
	cfg.PoolPrePing = getenv("DB_POOL_PREPING", "true") == "true"
	cfg.ConnectTimeout = time.Duration(getenvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.ApplicationName = getenv("DB_APPLICATION_NAME", "smart_parking_backend")
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n != 0 {
			return n
		}
	}
	return def
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultPgURL() string {
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	db := getenv("POSTGRES_DB", "smart_parking")
	return "postgresql://" + user + ":" + pass + "@" + host + ":" + port + "/" + db
}
