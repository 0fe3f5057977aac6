package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/tapledger/internal/stats/domain"
	"github.com/smallbiznis/tapledger/internal/stats/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var consumptionNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestConsumptionOnePointPerBucket(t *testing.T) {
	for _, months := range []int{1, 3, 6, 12} {
		buckets := window.MonthlyBuckets(window.NewReference(consumptionNow), months)
		got := Consumption(nil, buckets, ConsumptionOptions{PerDrink: true})
		require.Len(t, got.Points, len(buckets))
		for i, point := range got.Points {
			assert.Equal(t, buckets[i].Start, point.Start)
			assert.Equal(t, buckets[i].Label, point.Label)
			assert.Zero(t, point.Total)
		}
	}
}

func TestConsumptionPerDrinkSumsToTotal(t *testing.T) {
	b := newBuilder()
	buckets := window.MonthlyBuckets(window.NewReference(consumptionNow), 6)

	b.order(1, "Alice", bier, 3, time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC), "")
	b.order(1, "Alice", cola, 1, time.Date(2024, 3, 3, 20, 0, 0, 0, time.UTC), "")
	b.order(2, "Bob", cola, 2, time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC), "")
	b.order(2, "Bob", mate, 1, time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC), "")
	b.order(2, "Bob", cola, 7, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), "")

	got := Consumption(b.orders, buckets, ConsumptionOptions{PerDrink: true})
	require.Len(t, got.Points, 6)

	for _, point := range got.Points {
		require.Len(t, point.PerDrink, 3, "every point reports every drink")
		sum := decimal.Zero
		for _, v := range point.PerDrink {
			sum = sum.Add(decimal.NewFromFloat(v))
		}
		assert.InDelta(t, point.Total, sum.InexactFloat64(), 0.01)
	}

	march := got.Points[5]
	assert.Equal(t, 1.5, march.PerDrink[domain.KeyOf(bier.id)])
	assert.Equal(t, 0.99, march.PerDrink[domain.KeyOf(cola.id)])
	assert.Equal(t, 0.0, march.PerDrink[domain.KeyOf(mate.id)])
	assert.Equal(t, 2.49, march.Total)

	january := got.Points[3]
	assert.Equal(t, 0.5, january.Total)
	assert.Equal(t, 0.0, january.PerDrink[domain.KeyOf(bier.id)])

	assert.Equal(t, 0.0, got.Points[0].Total)
	assert.Equal(t, 2.31, got.Points[1].Total)
	assert.Equal(t, 5.30, got.Points[5].Cumulative)
}

func TestConsumptionRoundsOnce(t *testing.T) {
	b := newBuilder()
	buckets := window.MonthlyBuckets(window.NewReference(consumptionNow), 1)
	third := drinkSpec{id: 200, name: "Shot", volume: "0.004"}

	// 0.004 per order rounds to 0.00 on its own; three of them are 0.012 -> 0.01.
	for i := 0; i < 3; i++ {
		b.order(1, "Alice", third, 1, consumptionNow.Add(-time.Duration(i)*time.Hour), "")
	}

	got := Consumption(b.orders, buckets, ConsumptionOptions{})
	assert.Equal(t, 0.01, got.Points[0].Total)
	assert.Nil(t, got.Points[0].PerDrink)
}

func TestConsumptionSkipsEventAndUnknownVolume(t *testing.T) {
	b := newBuilder()
	buckets := window.MonthlyBuckets(window.NewReference(consumptionNow), 2)

	b.order(1, "Alice", bier, 2, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "")
	b.order(1, "Alice", bier, 20, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Sommerfest")
	b.order(1, "Alice", button, 5, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "")
	b.order(1, "Alice", bier, 9, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), "")

	got := Consumption(b.orders, buckets, ConsumptionOptions{PerDrink: true})
	require.Len(t, got.Points, 2)
	assert.Equal(t, 0.0, got.Points[0].Total)
	assert.Equal(t, 1.0, got.Points[1].Total)

	_, hasButton := got.Points[0].PerDrink[domain.KeyOf(button.id)]
	assert.True(t, hasButton, "non-volumetric items still get a zero column")
	require.Len(t, got.Legend, 2)
	assert.Equal(t, "Anstecker", got.Legend[0].Label)
	assert.Equal(t, "Bier", got.Legend[1].Label)
}

func TestLegendColoursAreStable(t *testing.T) {
	drinks := map[domain.DrinkKey]string{
		domain.KeyOf(bier.id): "Bier",
		domain.KeyOf(cola.id): "Cola",
	}
	first := Legend(drinks)
	second := Legend(drinks)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, first[0].Color)
	assert.Equal(t, ColorFor(domain.KeyOf(bier.id)), first[0].Color)
}

func TestConsumptionCumulativeFollowsShownTotals(t *testing.T) {
	b := newBuilder()
	buckets := window.MonthlyBuckets(window.NewReference(consumptionNow), 3)
	shot := drinkSpec{id: 201, name: "Kurzer", volume: "0.333"}
	b.order(1, "Alice", shot, 1, time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC), "")
	b.order(1, "Alice", shot, 1, time.Date(2024, 2, 5, 20, 0, 0, 0, time.UTC), "")
	b.order(1, "Alice", shot, 1, time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC), "")

	for _, perDrink := range []bool{true, false} {
		got := Consumption(b.orders, buckets, ConsumptionOptions{PerDrink: perDrink})
		require.Len(t, got.Points, 3)

		sum := decimal.Zero
		for _, point := range got.Points {
			assert.Equal(t, 0.33, point.Total)
			sum = sum.Add(decimal.NewFromFloat(point.Total))
			assert.Equal(t, sum.InexactFloat64(), point.Cumulative)
		}
		assert.Equal(t, 0.99, got.Points[2].Cumulative, "not 1.00 from the unrounded 0.999")
	}
}
