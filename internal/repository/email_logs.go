package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/models"
)

type EmailLogRepository interface {
	Create(ctx context.Context, entry *models.EmailLog) error
	List(ctx context.Context, page, limit int) (*Page[models.EmailLog], error)
	Delete(ctx context.Context, id uint) error
}

type emailLogRepository struct {
	table[models.EmailLog]
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{table[models.EmailLog]{db: db}}
}

func (r *emailLogRepository) Create(ctx context.Context, entry *models.EmailLog) error {
	return r.create(ctx, entry)
}

func (r *emailLogRepository) List(ctx context.Context, page, limit int) (*Page[models.EmailLog], error) {
	return r.list(ctx, "sent_at DESC, id DESC", page, limit)
}

func (r *emailLogRepository) Delete(ctx context.Context, id uint) error {
	return r.delete(ctx, id)
}
