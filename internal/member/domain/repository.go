package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Member, error)
	// LockByID reads the member row FOR UPDATE where the dialect supports it.
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	List(ctx context.Context, db *gorm.DB) ([]Member, error)
	SetBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, balanceCents int64, updatedAt time.Time) (int64, error)
}
