package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OrderFilter narrows range reads.
type OrderFilter struct {
	ExcludeEventOrders bool
	MemberID           *snowflake.ID
}

type Repository interface {
	InsertOrder(ctx context.Context, db *gorm.DB, order *Order) error
	FindOrderByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	DeleteUnbilledOrder(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	// OrdersInRange returns orders with start <= created_at < end, oldest first.
	OrdersInRange(ctx context.Context, db *gorm.DB, start, end time.Time, filter OrderFilter) ([]Order, error)
	// OrdersUnbilled returns every unbilled order. With lock set the rows stay
	// locked until db's transaction ends on dialects that support row locks.
	OrdersUnbilled(ctx context.Context, db *gorm.DB, lock bool) ([]Order, error)
	OrdersByBill(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]Order, error)
	MarkOrdersBilled(ctx context.Context, db *gorm.DB, billID snowflake.ID, orderIDs []snowflake.ID) (int64, error)

	DrinkByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Drink, error)
}
