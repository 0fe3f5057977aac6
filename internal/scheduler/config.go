package scheduler

import (
	"time"

	"github.com/smallbiznis/tapledger/internal/config"
)

const (
	JobBillingRun         = "billing_run"
	JobLeaderboardWarmup  = "leaderboard_warmup"
	defaultWarmupSchedule = "*/5 * * * *"
)

// Config controls which jobs are registered and on which cron schedule.
type Config struct {
	BillingEnabled  bool
	BillingSchedule string
	BillingTimeout  time.Duration
	WarmupEnabled   bool
	WarmupSchedule  string
	WarmupTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		BillingEnabled:  false,
		BillingSchedule: "0 4 1 * *",
		BillingTimeout:  2 * time.Minute,
		WarmupEnabled:   true,
		WarmupSchedule:  defaultWarmupSchedule,
		WarmupTimeout:   30 * time.Second,
	}
}

// ProvideConfig reads the billing schedule from the ledger config. Schedule
// changes take effect on restart; timeouts are re-read on every run.
func ProvideConfig(holder *config.LedgerConfigHolder) Config {
	ledger := holder.Get()
	cfg := DefaultConfig()
	cfg.BillingEnabled = ledger.BillingEnabled
	cfg.BillingSchedule = ledger.BillingSchedule
	cfg.BillingTimeout = time.Duration(ledger.BillingTimeout) * time.Second
	cfg.WarmupEnabled = ledger.LeaderboardTTL > 0
	return cfg
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BillingSchedule == "" {
		c.BillingSchedule = defaults.BillingSchedule
	}
	if c.BillingTimeout <= 0 {
		c.BillingTimeout = defaults.BillingTimeout
	}
	if c.WarmupSchedule == "" {
		c.WarmupSchedule = defaults.WarmupSchedule
	}
	if c.WarmupTimeout <= 0 {
		c.WarmupTimeout = defaults.WarmupTimeout
	}
	return c
}
