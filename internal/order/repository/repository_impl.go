package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/order/domain"
	pkgdb "github.com/smallbiznis/tapledger/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertOrder(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindOrderByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&order).Error; err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) DeleteUnbilledOrder(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND billed = ?", id, false).
		Delete(&domain.Order{})
	return res.RowsAffected, res.Error
}

func (r *repo) OrdersInRange(ctx context.Context, db *gorm.DB, start, end time.Time, filter domain.OrderFilter) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("created_at >= ? AND created_at < ?", start.UTC(), end.UTC())
	if filter.ExcludeEventOrders {
		stmt = stmt.Where("(booking_for IS NULL OR TRIM(booking_for) = '')")
	}
	if filter.MemberID != nil {
		stmt = stmt.Where("member_id = ?", *filter.MemberID)
	}

	var orders []domain.Order
	if err := stmt.Order("created_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	if !filter.ExcludeEventOrders {
		return orders, nil
	}
	// The SQL filter above and IsPersonal must agree; the predicate wins.
	personal := orders[:0]
	for _, order := range orders {
		if order.IsPersonal() {
			personal = append(personal, order)
		}
	}
	return personal, nil
}

func (r *repo) OrdersUnbilled(ctx context.Context, db *gorm.DB, lock bool) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("billed = ?", false)
	if lock && pkgdb.SupportsRowLocks(db) {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var orders []domain.Order
	if err := stmt.Order("created_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) OrdersByBill(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]domain.Order, error) {
	var orders []domain.Order
	err := db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repo) MarkOrdersBilled(ctx context.Context, db *gorm.DB, billID snowflake.ID, orderIDs []snowflake.ID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id IN ? AND billed = ?", orderIDs, false).
		Updates(map[string]any{
			"billed":  true,
			"bill_id": billID,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) DrinkByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Drink, error) {
	var drink domain.Drink
	if err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&drink).Error; err != nil {
		return nil, err
	}
	if drink.ID == 0 {
		return nil, nil
	}
	return &drink, nil
}
