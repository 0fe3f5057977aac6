// Package domain contains persistence models for member and event billing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"gorm.io/datatypes"
)

// BillStatus represents bill lifecycle states.
type BillStatus string

const (
	BillStatusUnpaid   BillStatus = "UNPAID"
	BillStatusPaid     BillStatus = "PAID"
	BillStatusDeferred BillStatus = "DEFERRED"
)

// Bill is a persisted statement for one billing subject. Items are written
// once with the bill and never change afterwards.
type Bill struct {
	ID                snowflake.ID            `gorm:"primaryKey" json:"id"`
	Number            string                  `gorm:"size:64;not null;uniqueIndex" json:"number"`
	Period            string                  `gorm:"size:7;not null;uniqueIndex:idx_bills_period_sequence,priority:1" json:"period"`
	Sequence          int64                   `gorm:"not null;uniqueIndex:idx_bills_period_sequence,priority:2" json:"sequence"`
	RunID             *snowflake.ID           `gorm:"index" json:"run_id,omitempty"`
	SubjectType       orderdomain.SubjectType `gorm:"type:text;not null" json:"subject_type"`
	MemberID          *snowflake.ID           `gorm:"index" json:"member_id,omitempty"`
	EventLabel        string                  `gorm:"type:text" json:"event_label,omitempty"`
	DisplayName       string                  `gorm:"type:text;not null" json:"display_name"`
	DrinksTotalCents  int64                   `gorm:"not null;default:0" json:"drinks_total_cents"`
	FeesCents         int64                   `gorm:"not null;default:0" json:"fees_cents"`
	OldBalanceCents   int64                   `gorm:"not null;default:0" json:"old_balance_cents"`
	TotalCents        int64                   `gorm:"not null;default:0" json:"total_cents"`
	Currency          string                  `gorm:"type:text;not null" json:"currency"`
	Status            BillStatus              `gorm:"type:text;not null;default:'UNPAID'" json:"status"`
	CompensatesBillID *snowflake.ID           `gorm:"index" json:"compensates_bill_id,omitempty"`
	PaidAt            *time.Time              `json:"paid_at,omitempty"`
	DeferredAt        *time.Time              `json:"deferred_at,omitempty"`
	Metadata          datatypes.JSONMap       `gorm:"not null" json:"metadata"`
	CreatedAt         time.Time               `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time               `gorm:"not null" json:"updated_at"`
}

func (Bill) TableName() string { return "bills" }

// BillItem is one line of a bill: a drink at one historical unit price.
type BillItem struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	BillID         snowflake.ID `gorm:"not null;index" json:"bill_id"`
	Position       int          `gorm:"not null" json:"position"`
	DrinkName      string       `gorm:"type:text;not null" json:"drink_name"`
	Quantity       int64        `gorm:"not null" json:"quantity"`
	UnitPriceCents int64        `gorm:"not null" json:"unit_price_cents"`
	SubtotalCents  int64        `gorm:"not null" json:"subtotal_cents"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
}

func (BillItem) TableName() string { return "bill_items" }

// Fee is a member charge outside drink orders, picked up by the next run.
type Fee struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	MemberID    snowflake.ID  `gorm:"not null;index" json:"member_id"`
	AmountCents int64         `gorm:"not null" json:"amount_cents"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Billed      bool          `gorm:"not null;index" json:"billed"`
	BillID      *snowflake.ID `gorm:"index" json:"bill_id,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
}

func (Fee) TableName() string { return "fees" }

// BillingRun records one closed billing period.
type BillingRun struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Reference   string       `gorm:"type:text;not null;uniqueIndex" json:"reference"`
	Period      string       `gorm:"type:text;not null;index" json:"period"`
	ReferenceAt time.Time    `gorm:"not null" json:"reference_at"`
	BillCount   int          `gorm:"not null" json:"bill_count"`
	OrderCount  int          `gorm:"not null" json:"order_count"`
	TotalCents  int64        `gorm:"not null" json:"total_cents"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (BillingRun) TableName() string { return "billing_runs" }

// LineItem is a merged statement line. OrderIDs lists the orders it covers.
type LineItem struct {
	DrinkName      string         `json:"drink_name"`
	Quantity       int64          `json:"quantity"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	SubtotalCents  int64          `json:"subtotal_cents"`
	OrderIDs       []snowflake.ID `json:"order_ids"`
}

// Statement is the unpersisted grouping of orders for one billing subject.
type Statement struct {
	SubjectType orderdomain.SubjectType `json:"subject_type"`
	MemberID    snowflake.ID            `json:"member_id,omitempty"`
	EventLabel  string                  `json:"event_label,omitempty"`
	DisplayName string                  `json:"display_name"`
	Items       []LineItem              `json:"items"`
	TotalCents  int64                   `json:"total_cents"`
}

// OrderIDs returns every order id of the statement in item order.
func (s Statement) OrderIDs() []snowflake.ID {
	ids := make([]snowflake.ID, 0)
	for _, item := range s.Items {
		ids = append(ids, item.OrderIDs...)
	}
	return ids
}

// BillDetail is a bill together with its items.
type BillDetail struct {
	Bill  Bill       `json:"bill"`
	Items []BillItem `json:"items"`
}
