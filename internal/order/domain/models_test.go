package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsEventOrder(t *testing.T) {
	label := "Sommerfest"
	blank := "  "
	assert.True(t, Order{BookingFor: &label}.IsEventOrder())
	assert.False(t, Order{BookingFor: &blank}.IsEventOrder())
	assert.False(t, Order{}.IsEventOrder())
	assert.True(t, Order{BookingFor: &blank}.IsPersonal())
	assert.Equal(t, "", Order{BookingFor: &blank}.EventLabel())
}

func TestOrderVolume(t *testing.T) {
	known := Order{Quantity: 3, UnitVolume: decimal.NewNullDecimal(decimal.RequireFromString("0.33"))}
	assert.True(t, known.Volume().Equal(decimal.RequireFromString("0.99")))

	unknown := Order{Quantity: 3}
	assert.True(t, unknown.Volume().IsZero())
}

func TestNormalizeBookingFor(t *testing.T) {
	blank := " "
	label := " Ball "
	assert.Nil(t, NormalizeBookingFor(nil))
	assert.Nil(t, NormalizeBookingFor(&blank))
	assert.Equal(t, "Ball", *NormalizeBookingFor(&label))
}
