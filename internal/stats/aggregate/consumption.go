package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/stats/domain"
	"github.com/smallbiznis/tapledger/internal/stats/window"
)

type ConsumptionOptions struct {
	PerDrink bool
}

type ConsumptionResult struct {
	Points []domain.ConsumptionPoint
	Legend []domain.LegendEntry
}

// Consumption sums personal volume per bucket. It returns exactly one point
// per bucket; orders outside every bucket are dropped.
func Consumption(orders []orderdomain.Order, buckets []window.Bucket, opts ConsumptionOptions) ConsumptionResult {
	perBucket := make([]map[domain.DrinkKey]decimal.Decimal, len(buckets))
	totals := make([]decimal.Decimal, len(buckets))
	for i := range perBucket {
		perBucket[i] = map[domain.DrinkKey]decimal.Decimal{}
	}

	// The drink set is fixed once for the whole series.
	drinks := map[domain.DrinkKey]string{}
	for _, order := range orders {
		if !order.IsPersonal() {
			continue
		}
		idx := window.Locate(buckets, order.CreatedAt)
		if idx < 0 {
			continue
		}
		key := domain.KeyOf(order.DrinkID)
		if _, ok := drinks[key]; !ok {
			drinks[key] = order.DrinkName
		}
		volume := order.Volume()
		perBucket[idx][key] = perBucket[idx][key].Add(volume)
		totals[idx] = totals[idx].Add(volume)
	}

	keys := sortedKeys(drinks)
	points := make([]domain.ConsumptionPoint, 0, len(buckets))
	cumulative := decimal.Zero
	for i, bucket := range buckets {
		point := domain.ConsumptionPoint{
			Start: bucket.Start,
			Label: bucket.Label,
		}
		var shown decimal.Decimal
		if opts.PerDrink {
			point.PerDrink = make(map[domain.DrinkKey]float64, len(keys))
			sum := decimal.Zero
			for _, key := range keys {
				rounded := perBucket[i][key].Round(2)
				point.PerDrink[key] = rounded.InexactFloat64()
				sum = sum.Add(rounded)
			}
			shown = sum
		} else {
			shown = totals[i].Round(2)
		}
		point.Total = shown.InexactFloat64()
		// Running sum of the shown totals, so the last point equals the sum of
		// every Total in the series.
		cumulative = cumulative.Add(shown)
		point.Cumulative = cumulative.InexactFloat64()
		points = append(points, point)
	}

	return ConsumptionResult{
		Points: points,
		Legend: Legend(drinks),
	}
}

// sortedKeys orders drinks by name, then id.
func sortedKeys(drinks map[domain.DrinkKey]string) []domain.DrinkKey {
	keys := make([]domain.DrinkKey, 0, len(drinks))
	for key := range drinks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if drinks[keys[i]] != drinks[keys[j]] {
			return drinks[keys[i]] < drinks[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
