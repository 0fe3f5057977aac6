// Package seed installs the starter drink catalogue on an empty ledger.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"gorm.io/gorm"
)

// CatalogueDrink describes one seeded drink; an empty Volume means unknown.
type CatalogueDrink struct {
	Name       string
	Volume     string
	PriceCents int64
}

func DefaultCatalogue() []CatalogueDrink {
	return []CatalogueDrink{
		{Name: "Bier", Volume: "0.5", PriceCents: 250},
		{Name: "Radler", Volume: "0.5", PriceCents: 250},
		{Name: "Cola", Volume: "0.33", PriceCents: 150},
		{Name: "Mate", Volume: "0.5", PriceCents: 200},
		{Name: "Wasser", Volume: "0.5", PriceCents: 100},
		{Name: "Kurzer", Volume: "0.02", PriceCents: 150},
	}
}

// EnsureCatalogue inserts every drink whose name is not taken yet. Existing
// drinks keep their current price.
func EnsureCatalogue(db *gorm.DB, drinks []CatalogueDrink) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range drinks {
			var count int64
			if err := tx.Model(&orderdomain.Drink{}).Where("name = ?", item.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			now := time.Now().UTC()
			drink := orderdomain.Drink{
				ID:         node.Generate(),
				Name:       item.Name,
				PriceCents: item.PriceCents,
				Available:  true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if item.Volume != "" {
				volume, err := decimal.NewFromString(item.Volume)
				if err != nil {
					return err
				}
				drink.VolumeLitres = decimal.NewNullDecimal(volume)
			}
			if err := tx.Create(&drink).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
