package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Member is the ledger's read model of an association member. Identity and
// login live upstream; the ledger only keeps what statements and rankings show.
type Member struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Avatar       string       `gorm:"column:avatar" json:"avatar,omitempty"`
	BalanceCents int64        `gorm:"not null;default:0" json:"balance_cents"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}
