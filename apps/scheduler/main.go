package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/authorization"
	"github.com/smallbiznis/tapledger/internal/billing"
	"github.com/smallbiznis/tapledger/internal/cache"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/config"
	"github.com/smallbiznis/tapledger/internal/member"
	"github.com/smallbiznis/tapledger/internal/observability"
	"github.com/smallbiznis/tapledger/internal/order"
	"github.com/smallbiznis/tapledger/internal/ratelimit"
	"github.com/smallbiznis/tapledger/internal/scheduler"
	"github.com/smallbiznis/tapledger/internal/stats"
	"github.com/smallbiznis/tapledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		scheduler.Module,

		// Domain services required by scheduler
		authorization.Module,
		ratelimit.Module,
		cache.Module,
		member.Module,
		order.Module,
		stats.Module,
		billing.Module,

		// No server module!
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
