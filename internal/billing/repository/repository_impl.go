package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/billing/domain"
	pkgdb "github.com/smallbiznis/tapledger/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertBill(ctx context.Context, db *gorm.DB, bill *domain.Bill) error {
	return db.WithContext(ctx).Create(bill).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.BillItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindBill(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	return r.findBill(ctx, db.WithContext(ctx), id)
}

func (r *repo) LockBill(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	stmt := db.WithContext(ctx)
	if pkgdb.SupportsRowLocks(db) {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findBill(ctx, stmt, id)
}

func (r *repo) findBill(_ context.Context, stmt *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	if err := stmt.Where("id = ?", id).Limit(1).Find(&bill).Error; err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) ItemsByBill(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]domain.BillItem, error) {
	var items []domain.BillItem
	err := db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) BillsByRun(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("sequence ASC").
		Find(&bills).Error
	return bills, err
}

func (r *repo) CompensationOf(ctx context.Context, db *gorm.DB, billID snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	if err := db.WithContext(ctx).Where("compensates_bill_id = ?", billID).Limit(1).Find(&bill).Error; err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.BillStatus, at time.Time) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case domain.BillStatusPaid:
		updates["paid_at"] = at
	case domain.BillStatusDeferred:
		updates["deferred_at"] = at
	}
	res := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, period string) (int64, error) {
	var current int64
	err := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("period = ?", period).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *repo) InsertFee(ctx context.Context, db *gorm.DB, fee *domain.Fee) error {
	return db.WithContext(ctx).Create(fee).Error
}

func (r *repo) PendingFees(ctx context.Context, db *gorm.DB, memberID snowflake.ID, lock bool) ([]domain.Fee, error) {
	stmt := db.WithContext(ctx).
		Where("member_id = ? AND billed = ?", memberID, false)
	if lock && pkgdb.SupportsRowLocks(db) {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var fees []domain.Fee
	err := stmt.Order("created_at ASC, id ASC").Find(&fees).Error
	return fees, err
}

func (r *repo) MarkFeesBilled(ctx context.Context, db *gorm.DB, billID snowflake.ID, feeIDs []snowflake.ID) (int64, error) {
	if len(feeIDs) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Fee{}).
		Where("id IN ? AND billed = ?", feeIDs, false).
		Updates(map[string]any{
			"billed":  true,
			"bill_id": billID,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) InsertRun(ctx context.Context, db *gorm.DB, run *domain.BillingRun) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) FindRun(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.BillingRun, error) {
	var run domain.BillingRun
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&run).Error; err != nil {
		return nil, err
	}
	if run.ID == 0 {
		return nil, nil
	}
	return &run, nil
}
