package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/repository.go -package=mock . Repository

type Repository interface {
	InsertBill(ctx context.Context, db *gorm.DB, bill *Bill) error
	InsertItems(ctx context.Context, db *gorm.DB, items []BillItem) error
	FindBill(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	// LockBill reads the bill FOR UPDATE where the dialect supports it.
	LockBill(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	ItemsByBill(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]BillItem, error)
	BillsByRun(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]Bill, error)
	CompensationOf(ctx context.Context, db *gorm.DB, billID snowflake.ID) (*Bill, error)
	// UpdateStatus moves a bill from one status to another and reports the
	// affected rows; zero means the bill was no longer in status from.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to BillStatus, at time.Time) (int64, error)
	// NextSequence returns the next bill sequence of a billing period.
	NextSequence(ctx context.Context, db *gorm.DB, period string) (int64, error)

	InsertFee(ctx context.Context, db *gorm.DB, fee *Fee) error
	PendingFees(ctx context.Context, db *gorm.DB, memberID snowflake.ID, lock bool) ([]Fee, error)
	MarkFeesBilled(ctx context.Context, db *gorm.DB, billID snowflake.ID, feeIDs []snowflake.ID) (int64, error)

	InsertRun(ctx context.Context, db *gorm.DB, run *BillingRun) error
	FindRun(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingRun, error)
}
