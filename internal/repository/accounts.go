package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/smartparking/backend/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	SetActive(ctx context.Context, id uint, active bool) (*models.Account, error)
	List(ctx context.Context, page, limit int) (*Page[models.Account], error)
}

type accountRepository struct {
	table[models.Account]
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{table[models.Account]{db: db}}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.create(ctx, account)
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	return r.get(ctx, id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *accountRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	n, err := r.count(ctx, "username = ? OR email = ?", username, email)
	return n > 0, err
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) SetActive(ctx context.Context, id uint, active bool) (*models.Account, error) {
	res := r.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.get(ctx, id)
}

func (r *accountRepository) List(ctx context.Context, page, limit int) (*Page[models.Account], error) {
	return r.list(ctx, "created_at DESC, id DESC", page, limit)
}
