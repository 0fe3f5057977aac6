package repository

import (
	"context"

	"github.com/smallbiznis/tapledger/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a generic gorm-backed store for catalogue-like models whose
// reads are plain filters plus sort and page options. Ledger writes that
// need row locks go through the domain repositories instead.
type Repository[T any] interface {
	Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil without an error when nothing matches.
	FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, row *T) error
	// Update applies column changes to the row with the given id and reports
	// gorm.ErrRecordNotFound when no row matched.
	Update(ctx context.Context, id any, changes map[string]any) error
}

// ProvideStore binds a Repository for T to db.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}
