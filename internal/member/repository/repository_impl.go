package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/member/domain"
	pkgdb "github.com/smallbiznis/tapledger/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).
		Raw(`SELECT id, name, avatar, balance_cents, created_at, updated_at FROM members WHERE id = ?`, id).
		Scan(&member).Error
	if err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []domain.Member
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

func (r *repo) LockByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Member, error) {
	stmt := tx.WithContext(ctx).Where("id = ?", id)
	if pkgdb.SupportsRowLocks(tx) {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var member domain.Member
	if err := stmt.Limit(1).Find(&member).Error; err != nil {
		return nil, err
	}
	if member.ID == 0 {
		return nil, nil
	}
	return &member, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Member, error) {
	var members []domain.Member
	err := db.WithContext(ctx).Order("name ASC, id ASC").Find(&members).Error
	return members, err
}

func (r *repo) SetBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, balanceCents int64, updatedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance_cents": balanceCents,
			"updated_at":    updatedAt,
		})
	return res.RowsAffected, res.Error
}
