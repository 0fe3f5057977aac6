package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/clock"
	"github.com/smallbiznis/tapledger/internal/config"
	"github.com/smallbiznis/tapledger/internal/migration"
	"github.com/smallbiznis/tapledger/internal/observability"
	"github.com/smallbiznis/tapledger/internal/server"
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
		migration.Module,

		// No scheduler: billing runs come from the scheduler app or POST /api/billing/runs.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
