package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/models"
)

type Config struct {
	DatabaseURL     string
	PoolSize        int
	PoolRecycle     time.Duration
	PoolPrePing     bool
	ConnectTimeout  time.Duration
	ApplicationName string
}

const sqlitePrefix = "sqlite:"

// Open connects to Postgres, or to SQLite when DatabaseURL starts with "sqlite:"
// (e.g. "sqlite::memory:" or "sqlite:parking.db").
func Open(cfg Config) (*gorm.DB, error) {
	// 1s slow threshold keeps AutoMigrate introspection out of the log
	customLogger := logger.New(
		gormWriter{},
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormCfg := &gorm.Config{
		Logger:         customLogger,
		TranslateError: true,
	}

	isSQLite := strings.HasPrefix(cfg.DatabaseURL, sqlitePrefix)

	var dial gorm.Dialector
	if isSQLite {
		dial = sqlite.Open(strings.TrimPrefix(cfg.DatabaseURL, sqlitePrefix))
	} else {
		gormCfg.PrepareStmt = true
		dial = postgres.Open(postgresURL(cfg))
	}

	db, err := gorm.Open(dial, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if isSQLite {
		// every new connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	poolSize := cfg.PoolSize
	if poolSize < 1 {
		poolSize = 10
	}
	sqlDB.SetMaxOpenConns(poolSize)
	idleConns := poolSize / 2
	if idleConns < 2 {
		idleConns = 2
	}
	sqlDB.SetMaxIdleConns(idleConns)
	sqlDB.SetConnMaxLifetime(cfg.PoolRecycle)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		logging.Warn().Err(err).Msg("db ping error")
	}

	return db, nil
}

// gormWriter routes gorm's slow-query and error lines into the zerolog logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	logging.Warn().Str("component", "gorm").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Migrate creates or updates the six tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.LoginAttempt{},
		&models.GateEvent{},
		&models.Alert{},
		&models.SlotSnapshot{},
		&models.EmailLog{},
	)
}

func postgresURL(cfg Config) string {
	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		return databaseURL
	}

	params := []string{}
	if !containsParam(databaseURL, "timezone") {
		params = append(params, "timezone=UTC")
	}
	if !containsParam(databaseURL, "connect_timeout") {
		params = append(params, "connect_timeout=10")
	}
	if cfg.ApplicationName != "" && !containsParam(databaseURL, "application_name") {
		params = append(params, "application_name="+cfg.ApplicationName)
	}
	// TODO: default to sslmode=require once the managed database enforces TLS
	if !containsParam(databaseURL, "sslmode") {
		params = append(params, "sslmode=disable")
	}

	if len(params) > 0 {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + strings.Join(params, "&")
	}
	return databaseURL
}

func containsParam(url string, param string) bool {
	return strings.Contains(url, param+"=")
}
