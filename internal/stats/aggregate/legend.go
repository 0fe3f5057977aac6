package aggregate

import (
	"hash/fnv"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/smallbiznis/tapledger/internal/stats/domain"
)

const (
	legendChroma    = 0.55
	legendLightness = 0.65
)

// Legend lists drinks by name with a colour that depends only on the drink id.
func Legend(drinks map[domain.DrinkKey]string) []domain.LegendEntry {
	keys := sortedKeys(drinks)
	legend := make([]domain.LegendEntry, 0, len(keys))
	for _, key := range keys {
		legend = append(legend, domain.LegendEntry{
			DrinkID: key,
			Label:   drinks[key],
			Color:   ColorFor(key),
		})
	}
	return legend
}

// ColorFor maps a drink to a hue on a fixed HCL chroma/lightness ring.
func ColorFor(key domain.DrinkKey) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	hue := float64(h.Sum32() % 360)
	return colorful.Hcl(hue, legendChroma, legendLightness).Clamped().Hex()
}
