package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// LedgerConfig tunes aggregation windows and billing runs.
type LedgerConfig struct {
	TrendMonths      int    `mapstructure:"trendMonths"`
	WindowDays       int    `mapstructure:"windowDays"`
	LeaderboardLimit int    `mapstructure:"leaderboardLimit"`
	LeaderboardTTL   int    `mapstructure:"leaderboardCacheSeconds"`
	Currency         string `mapstructure:"currency"`
	BillingSchedule  string `mapstructure:"billingSchedule"`
	BillingEnabled   bool   `mapstructure:"billingEnabled"`
	BillingTimeout   int    `mapstructure:"billingTimeoutSeconds"`
	BillNumberFormat string `mapstructure:"billNumberFormat"`
	Issuer           string `mapstructure:"issuer"`
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		TrendMonths:      6,
		WindowDays:       31,
		LeaderboardLimit: 10,
		LeaderboardTTL:   60,
		Currency:         "EUR",
		BillingSchedule:  "0 4 1 * *",
		BillingEnabled:   false,
		BillingTimeout:   120,
		BillNumberFormat: "TAP-{YYYY}{MM}-{SEQ4}",
		Issuer:           "tapledger",
	}
}

type LedgerConfigHolder struct {
	current atomic.Value // holds LedgerConfig
}

// NewStaticLedgerConfigHolder wraps a fixed config; used by tests and tools.
func NewStaticLedgerConfigHolder(cfg LedgerConfig) *LedgerConfigHolder {
	holder := &LedgerConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewLedgerConfigHolder() (*LedgerConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("ledger")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/tapledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TAPLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLedgerConfig()
	v.SetDefault("ledger.trendMonths", defaults.TrendMonths)
	v.SetDefault("ledger.windowDays", defaults.WindowDays)
	v.SetDefault("ledger.leaderboardLimit", defaults.LeaderboardLimit)
	v.SetDefault("ledger.leaderboardCacheSeconds", defaults.LeaderboardTTL)
	v.SetDefault("ledger.currency", defaults.Currency)
	v.SetDefault("ledger.billingSchedule", defaults.BillingSchedule)
	v.SetDefault("ledger.billingEnabled", defaults.BillingEnabled)
	v.SetDefault("ledger.billingTimeoutSeconds", defaults.BillingTimeout)
	v.SetDefault("ledger.billNumberFormat", defaults.BillNumberFormat)
	v.SetDefault("ledger.issuer", defaults.Issuer)

	configFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		configFound = false
	}

	var cfg LedgerConfig
	if err := v.UnmarshalKey("ledger", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateLedgerConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticLedgerConfigHolder(cfg)
	if !configFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated LedgerConfig
		if err := v.UnmarshalKey("ledger", &updated); err != nil {
			log.Printf("[ledger-config] reload failed: %v", err)
			return
		}
		if err := ValidateLedgerConfig(updated); err != nil {
			log.Printf("[ledger-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[ledger-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *LedgerConfigHolder) Get() LedgerConfig {
	return h.current.Load().(LedgerConfig)
}

func ValidateLedgerConfig(cfg LedgerConfig) error {
	if cfg.TrendMonths <= 0 || cfg.TrendMonths > 36 {
		return errors.New("ledger.trendMonths must be between 1 and 36")
	}
	if cfg.WindowDays <= 0 {
		return errors.New("ledger.windowDays must be positive")
	}
	if cfg.LeaderboardLimit <= 0 {
		return errors.New("ledger.leaderboardLimit must be positive")
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("ledger.currency cannot be empty")
	}
	if !strings.Contains(cfg.BillNumberFormat, "{SEQ") {
		return errors.New("ledger.billNumberFormat must contain a {SEQ} token")
	}
	if cfg.BillingEnabled {
		if _, err := cron.ParseStandard(cfg.BillingSchedule); err != nil {
			return errors.New("ledger.billingSchedule is not a valid cron expression")
		}
	}
	return nil
}
