package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	memberdomain "github.com/smallbiznis/tapledger/internal/member/domain"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"gorm.io/gorm"
)

// Ledger writes members, drinks and orders directly, bypassing services,
// so tests can place orders at arbitrary instants.
type Ledger struct {
	db   *gorm.DB
	node *snowflake.Node
}

func NewLedger(db *gorm.DB, node *snowflake.Node) *Ledger {
	return &Ledger{db: db, node: node}
}

func (l *Ledger) Member(ctx context.Context, name string) memberdomain.Member {
	now := time.Now().UTC()
	member := memberdomain.Member{
		ID:        l.node.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.db.WithContext(ctx).Create(&member).Error; err != nil {
		panic(err)
	}
	return member
}

// Drink creates an available drink; volume "" means unknown volume.
func (l *Ledger) Drink(ctx context.Context, name string, volume string, priceCents int64) orderdomain.Drink {
	now := time.Now().UTC()
	drink := orderdomain.Drink{
		ID:         l.node.Generate(),
		Name:       name,
		PriceCents: priceCents,
		Available:  true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if volume != "" {
		drink.VolumeLitres = decimal.NewNullDecimal(decimal.RequireFromString(volume))
	}
	if err := l.db.WithContext(ctx).Create(&drink).Error; err != nil {
		panic(err)
	}
	return drink
}

// Order inserts an order at createdAt with the given unit price.
func (l *Ledger) Order(ctx context.Context, member memberdomain.Member, drink orderdomain.Drink, qty int64, unitPriceCents int64, bookingFor string, createdAt time.Time) orderdomain.Order {
	order := orderdomain.Order{
		ID:             l.node.Generate(),
		MemberID:       member.ID,
		MemberName:     member.Name,
		DrinkID:        drink.ID,
		DrinkName:      drink.Name,
		UnitVolume:     drink.VolumeLitres,
		UnitPriceCents: unitPriceCents,
		Quantity:       qty,
		TotalCents:     qty * unitPriceCents,
		CreatedAt:      createdAt.UTC(),
	}
	if bookingFor != "" {
		label := bookingFor
		order.BookingFor = &label
	}
	if err := l.db.WithContext(ctx).Create(&order).Error; err != nil {
		panic(err)
	}
	return order
}

// Backdate moves an order to a new timestamp.
func (l *Ledger) Backdate(ctx context.Context, orderID snowflake.ID, createdAt time.Time) error {
	return l.db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("id = ?", orderID).
		Update("created_at", createdAt.UTC()).Error
}
