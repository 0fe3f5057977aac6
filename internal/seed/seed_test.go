package seed

import (
	"testing"

	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCatalogueIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t, &orderdomain.Drink{})

	require.NoError(t, EnsureCatalogue(db, DefaultCatalogue()))
	require.NoError(t, db.Model(&orderdomain.Drink{}).Where("name = ?", "Bier").Update("price_cents", 300).Error)
	require.NoError(t, EnsureCatalogue(db, DefaultCatalogue()))

	var count int64
	require.NoError(t, db.Model(&orderdomain.Drink{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultCatalogue())), count)

	var bier orderdomain.Drink
	require.NoError(t, db.Where("name = ?", "Bier").First(&bier).Error)
	assert.Equal(t, int64(300), bier.PriceCents)
	assert.True(t, bier.VolumeLitres.Valid)
}

func TestEnsureCatalogueRejectsBadVolume(t *testing.T) {
	db := testutil.NewDB(t, &orderdomain.Drink{})
	err := EnsureCatalogue(db, []CatalogueDrink{{Name: "Mystery", Volume: "lots", PriceCents: 100}})
	assert.Error(t, err)
}
