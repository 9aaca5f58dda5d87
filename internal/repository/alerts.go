package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/models"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	Get(ctx context.Context, id uint) (*models.Alert, error)
	Update(ctx context.Context, id uint, alert *models.Alert) (*models.Alert, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) (*Page[models.Alert], error)
	MarkHandled(ctx context.Context, id uint) (*models.Alert, error)
	// CreateStaffReset inserts a handled STAFF_RESET alert and, in the same transaction,
	// marks every other unhandled alert handled. It returns how many alerts were flipped.
	CreateStaffReset(ctx context.Context, alert *models.Alert) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountUnhandled(ctx context.Context) (int64, error)
}

type alertRepository struct {
	table[models.Alert]
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{table[models.Alert]{db: db}}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.create(ctx, alert)
}

func (r *alertRepository) Get(ctx context.Context, id uint) (*models.Alert, error) {
	return r.get(ctx, id)
}

func (r *alertRepository) Update(ctx context.Context, id uint, alert *models.Alert) (*models.Alert, error) {
	return r.overwrite(ctx, id, alert)
}

func (r *alertRepository) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}

func (r *alertRepository) List(ctx context.Context, page, limit int) (*Page[models.Alert], error) {
	return r.list(ctx, newestFirst, page, limit)
}

func (r *alertRepository) MarkHandled(ctx context.Context, id uint) (*models.Alert, error) {
	res := r.db.WithContext(ctx).Model(&models.Alert{}).Where("id = ?", id).Update("is_handled", true)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.get(ctx, id)
}

func (r *alertRepository) CreateStaffReset(ctx context.Context, alert *models.Alert) (int64, error) {
	alert.AlertType = models.AlertTypeStaffReset
	alert.IsHandled = true

	var flipped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(alert).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Alert{}).
			Where("is_handled = ? AND alert_type <> ?", false, models.AlertTypeStaffReset).
			Update("is_handled", true)
		if res.Error != nil {
			return res.Error
		}
		flipped = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return flipped, nil
}

func (r *alertRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, "")
}

func (r *alertRepository) CountUnhandled(ctx context.Context) (int64, error) {
	return r.count(ctx, "is_handled = ?", false)
}
