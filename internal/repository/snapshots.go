package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/models"
)

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.SlotSnapshot) error
	Update(ctx context.Context, id uint, snapshot *models.SlotSnapshot) (*models.SlotSnapshot, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) (*Page[models.SlotSnapshot], error)
	Latest(ctx context.Context) (*models.SlotSnapshot, error)
	Count(ctx context.Context) (int64, error)
}

type snapshotRepository struct {
	table[models.SlotSnapshot]
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{table[models.SlotSnapshot]{db: db}}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.SlotSnapshot) error {
	return r.create(ctx, snapshot)
}

func (r *snapshotRepository) Update(ctx context.Context, id uint, snapshot *models.SlotSnapshot) (*models.SlotSnapshot, error) {
	return r.overwrite(ctx, id, snapshot)
}

func (r *snapshotRepository) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}

func (r *snapshotRepository) List(ctx context.Context, page, limit int) (*Page[models.SlotSnapshot], error) {
	return r.list(ctx, newestFirst, page, limit)
}

func (r *snapshotRepository) Latest(ctx context.Context) (*models.SlotSnapshot, error) {
	return r.latest(ctx, newestFirst)
}

func (r *snapshotRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, "")
}
