package repository

import (
	"context"

	"gorm.io/gorm"
)

// table holds the statements every entity table shares.
type table[T any] struct {
	db *gorm.DB
}

func (t table[T]) create(ctx context.Context, row *T) error {
	return translate(t.db.WithContext(ctx).Create(row).Error)
}

func (t table[T]) get(ctx context.Context, id uint) (*T, error) {
	var row T
	if err := t.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// overwrite replaces every mutable column of row id and returns the stored row.
func (t table[T]) overwrite(ctx context.Context, id uint, row *T) (*T, error) {
	res := t.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Select("*").Omit("id", "created_at").
		Updates(row)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return t.get(ctx, id)
}

func (t table[T]) delete(ctx context.Context, id uint) error {
	res := t.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t table[T]) list(ctx context.Context, order string, page, limit int) (*Page[T], error) {
	p, err := paginate[T](t.db.WithContext(ctx).Model(new(T)), order, page, limit)
	return p, translate(err)
}

func (t table[T]) latest(ctx context.Context, order string) (*T, error) {
	var row T
	err := t.db.WithContext(ctx).Order(order).Take(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (t table[T]) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	q := t.db.WithContext(ctx).Model(new(T))
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, translate(err)
}
