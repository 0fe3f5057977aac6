package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLedgerConfig(t *testing.T) {
	valid := DefaultLedgerConfig()
	assert.NoError(t, ValidateLedgerConfig(valid))

	cases := map[string]func(*LedgerConfig){
		"zero months":     func(c *LedgerConfig) { c.TrendMonths = 0 },
		"too many months": func(c *LedgerConfig) { c.TrendMonths = 40 },
		"zero window":     func(c *LedgerConfig) { c.WindowDays = 0 },
		"zero limit":      func(c *LedgerConfig) { c.LeaderboardLimit = 0 },
		"blank currency":  func(c *LedgerConfig) { c.Currency = " " },
		"no sequence":     func(c *LedgerConfig) { c.BillNumberFormat = "TAP-{YYYY}" },
		"bad schedule": func(c *LedgerConfig) {
			c.BillingEnabled = true
			c.BillingSchedule = "every tuesday"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultLedgerConfig()
			mutate(&cfg)
			assert.Error(t, ValidateLedgerConfig(cfg))
		})
	}
}

func TestStaticHolderReturnsStoredConfig(t *testing.T) {
	cfg := DefaultLedgerConfig()
	cfg.LeaderboardLimit = 3
	holder := NewStaticLedgerConfigHolder(cfg)
	assert.Equal(t, 3, holder.Get().LeaderboardLimit)
}
