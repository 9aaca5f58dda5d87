// Package repository is the persistence gateway: one typed, parameterised repository per table.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Page is one page of a listing ordered newest first.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

const (
	maxLimit = 100
	maxPage  = 1_000_000_000
)

// bounds clamps page and limit so the offset cannot overflow and a page never
// asks for more than maxLimit rows.
func bounds(page, limit int) (int, int) {
	return min(max(page, 1), maxPage), min(max(limit, 1), maxLimit)
}

func offset(page, limit int) int {
	return (page - 1) * limit
}

// paginate counts all rows matched by q, then loads the requested page.
func paginate[T any](q *gorm.DB, order string, page, limit int) (*Page[T], error) {
	page, limit = bounds(page, limit)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	items := []T{}
	if err := q.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(offset(page, limit)).Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// Repositories bundles every gateway so wiring code passes one value around.
type Repositories struct {
	Accounts      AccountRepository
	LoginAttempts LoginAttemptRepository
	GateEvents    GateEventRepository
	Alerts        AlertRepository
	Snapshots     SnapshotRepository
	EmailLogs     EmailLogRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Accounts:      NewAccountRepository(db),
		LoginAttempts: NewLoginAttemptRepository(db),
		GateEvents:    NewGateEventRepository(db),
		Alerts:        NewAlertRepository(db),
		Snapshots:     NewSnapshotRepository(db),
		EmailLogs:     NewEmailLogRepository(db),
	}
}
