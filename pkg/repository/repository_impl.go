package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/tapledger/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	if err := s.query(ctx, filter, opts).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *store[T]) FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	var row T
	err := s.query(ctx, filter, opts).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *store[T]) Create(ctx context.Context, row *T) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *store[T]) Update(ctx context.Context, id any, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// query applies the zero-value-skipping struct filter first, then options in
// order, so sort and pagination always come last.
func (s *store[T]) query(ctx context.Context, filter *T, opts []option.QueryOption) *gorm.DB {
	stmt := s.db.WithContext(ctx)
	if filter != nil {
		stmt = stmt.Where(filter)
	}
	for _, opt := range opts {
		if opt != nil {
			stmt = opt.Apply(stmt)
		}
	}
	return stmt
}
