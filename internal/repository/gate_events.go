package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/models"
)

const newestFirst = "created_at DESC, id DESC"

type GateEventRepository interface {
	Create(ctx context.Context, event *models.GateEvent) error
	Update(ctx context.Context, id uint, event *models.GateEvent) (*models.GateEvent, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) (*Page[models.GateEvent], error)
	Latest(ctx context.Context) (*models.GateEvent, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type gateEventRepository struct {
	table[models.GateEvent]
}

func NewGateEventRepository(db *gorm.DB) GateEventRepository {
	return &gateEventRepository{table[models.GateEvent]{db: db}}
}

func (r *gateEventRepository) Create(ctx context.Context, event *models.GateEvent) error {
	return r.create(ctx, event)
}

func (r *gateEventRepository) Update(ctx context.Context, id uint, event *models.GateEvent) (*models.GateEvent, error) {
	return r.overwrite(ctx, id, event)
}

func (r *gateEventRepository) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}

func (r *gateEventRepository) List(ctx context.Context, page, limit int) (*Page[models.GateEvent], error) {
	return r.list(ctx, newestFirst, page, limit)
}

func (r *gateEventRepository) Latest(ctx context.Context) (*models.GateEvent, error) {
	return r.latest(ctx, newestFirst)
}

func (r *gateEventRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, "")
}

func (r *gateEventRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, "created_at >= ?", since)
}
