package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SubjectType names who an order is charged to.
type SubjectType string

const (
	SubjectMember SubjectType = "MEMBER"
	SubjectEvent  SubjectType = "EVENT"
)

type Drink struct {
	ID           snowflake.ID        `gorm:"primaryKey" json:"id"`
	Name         string              `gorm:"not null;uniqueIndex" json:"name"`
	VolumeLitres decimal.NullDecimal `gorm:"type:numeric(10,3)" json:"volume_litres"`
	PriceCents   int64               `gorm:"not null" json:"price_cents"`
	Available    bool                `gorm:"not null" json:"available"`
	CreatedAt    time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time           `gorm:"not null" json:"updated_at"`
}

// Order is a drink purchase. Price and volume are copied from the drink at
// placement time and never re-read from the catalogue.
type Order struct {
	ID             snowflake.ID        `gorm:"primaryKey" json:"id"`
	MemberID       snowflake.ID        `gorm:"not null;index" json:"member_id"`
	MemberName     string              `gorm:"not null" json:"member_name"`
	DrinkID        snowflake.ID        `gorm:"not null" json:"drink_id"`
	DrinkName      string              `gorm:"not null" json:"drink_name"`
	UnitVolume     decimal.NullDecimal `gorm:"type:numeric(10,3)" json:"unit_volume"`
	UnitPriceCents int64               `gorm:"not null" json:"unit_price_cents"`
	Quantity       int64               `gorm:"not null" json:"quantity"`
	TotalCents     int64               `gorm:"not null" json:"total_cents"`
	BookingFor     *string             `gorm:"index" json:"booking_for,omitempty"`
	Billed         bool                `gorm:"not null;index" json:"billed"`
	BillID         *snowflake.ID       `gorm:"index" json:"bill_id,omitempty"`
	CreatedAt      time.Time           `gorm:"not null;index" json:"created_at"`
}

// IsEventOrder reports whether the order carries a booking-for label. Every
// aggregation decides personal vs event through this method.
func (o Order) IsEventOrder() bool {
	return o.BookingFor != nil && strings.TrimSpace(*o.BookingFor) != ""
}

// IsPersonal is the negation of IsEventOrder.
func (o Order) IsPersonal() bool {
	return !o.IsEventOrder()
}

// SubjectType classifies the order for billing.
func (o Order) SubjectType() SubjectType {
	if o.IsEventOrder() {
		return SubjectEvent
	}
	return SubjectMember
}

// EventLabel returns the trimmed booking label, empty for personal orders.
func (o Order) EventLabel() string {
	if !o.IsEventOrder() {
		return ""
	}
	return strings.TrimSpace(*o.BookingFor)
}

// Volume is quantity times unit volume in litres; unknown volume counts as zero.
func (o Order) Volume() decimal.Decimal {
	if !o.UnitVolume.Valid {
		return decimal.Zero
	}
	return o.UnitVolume.Decimal.Mul(decimal.NewFromInt(o.Quantity))
}

// NormalizeBookingFor trims a booking label and maps blank labels to nil.
func NormalizeBookingFor(label *string) *string {
	if label == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
