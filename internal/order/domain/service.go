package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// MaxOrderQuantity bounds a single booking. A round for the whole bar stays
// well below it and totals cannot overflow int64 cents.
const MaxOrderQuantity = 1000

type PlaceOrderRequest struct {
	MemberID   string  `json:"member_id"`
	DrinkID    string  `json:"drink_id"`
	Quantity   int64   `json:"quantity"`
	BookingFor *string `json:"booking_for"`
}

type CreateDrinkRequest struct {
	Name         string           `json:"name"`
	VolumeLitres *decimal.Decimal `json:"volume_litres"`
	PriceCents   int64            `json:"price_cents"`
	Available    *bool            `json:"available"`
}

type UpdateDrinkPriceRequest struct {
	DrinkID    string `json:"-"`
	PriceCents int64  `json:"price_cents"`
}

type ListDrinksRequest struct {
	OnlyAvailable bool
}

type Service interface {
	PlaceOrder(context.Context, PlaceOrderRequest) (Order, error)
	DeleteUnbilledOrder(ctx context.Context, memberID string, orderID string) error
	ListDrinks(context.Context, ListDrinksRequest) ([]Drink, error)
	CreateDrink(context.Context, CreateDrinkRequest) (Drink, error)
	UpdateDrinkPrice(context.Context, UpdateDrinkPriceRequest) (Drink, error)
}

var (
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidMember    = errors.New("invalid_member")
	ErrInvalidDrink     = errors.New("invalid_drink")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidVolume    = errors.New("invalid_volume")
	ErrDrinkNotFound    = errors.New("drink_not_found")
	ErrDrinkUnavailable = errors.New("drink_unavailable")
	ErrDrinkExists      = errors.New("drink_exists")
	ErrMemberNotFound   = errors.New("member_not_found")
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrOrderBilled      = errors.New("order_billed")
	ErrForbidden        = errors.New("forbidden")
)
