package aggregate

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
)

type drinkSpec struct {
	id     snowflake.ID
	name   string
	volume string
}

var (
	bier   = drinkSpec{id: 100, name: "Bier", volume: "0.5"}
	cola   = drinkSpec{id: 101, name: "Cola", volume: "0.33"}
	mate   = drinkSpec{id: 102, name: "Mate", volume: "0.5"}
	button = drinkSpec{id: 103, name: "Anstecker"}
)

type builder struct {
	next   snowflake.ID
	orders []orderdomain.Order
}

func newBuilder() *builder {
	return &builder{next: 1000}
}

func (b *builder) order(memberID snowflake.ID, memberName string, drink drinkSpec, qty int64, at time.Time, bookingFor string) orderdomain.Order {
	b.next++
	order := orderdomain.Order{
		ID:             b.next,
		MemberID:       memberID,
		MemberName:     memberName,
		DrinkID:        drink.id,
		DrinkName:      drink.name,
		UnitPriceCents: 250,
		Quantity:       qty,
		TotalCents:     qty * 250,
		CreatedAt:      at,
	}
	if drink.volume != "" {
		order.UnitVolume = decimal.NewNullDecimal(decimal.RequireFromString(drink.volume))
	}
	if bookingFor != "" {
		label := bookingFor
		order.BookingFor = &label
	}
	b.orders = append(b.orders, order)
	return order
}
