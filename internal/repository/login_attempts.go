package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/models"
)

type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) error
	ListByAccount(ctx context.Context, accountID uint, page, limit int) (*Page[models.LoginAttempt], error)
	ListAll(ctx context.Context, page, limit int) (*Page[models.LoginAttemptWithAccount], error)
	Delete(ctx context.Context, id uint) error
}

type loginAttemptRepository struct {
	table[models.LoginAttempt]
}

func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepository{table[models.LoginAttempt]{db: db}}
}

func (r *loginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	return r.create(ctx, attempt)
}

func (r *loginAttemptRepository) ListByAccount(ctx context.Context, accountID uint, page, limit int) (*Page[models.LoginAttempt], error) {
	q := r.db.WithContext(ctx).Model(&models.LoginAttempt{}).Where("account_id = ?", accountID)
	p, err := paginate[models.LoginAttempt](q, "login_time DESC, id DESC", page, limit)
	return p, translate(err)
}

// ListAll includes attempts for unknown usernames; their account columns are null.
func (r *loginAttemptRepository) ListAll(ctx context.Context, page, limit int) (*Page[models.LoginAttemptWithAccount], error) {
	page, limit = bounds(page, limit)
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.LoginAttempt{}).Count(&total).Error; err != nil {
		return nil, translate(err)
	}
	items := []models.LoginAttemptWithAccount{}
	err := r.db.WithContext(ctx).
		Table("login_attempts AS l").
		Select("l.*, a.username AS account_username, a.email AS account_email").
		Joins("LEFT JOIN accounts AS a ON a.id = l.account_id").
		Order("l.login_time DESC, l.id DESC").
		Limit(limit).Offset(offset(page, limit)).
		Scan(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return &Page[models.LoginAttemptWithAccount]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (r *loginAttemptRepository) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}
