package migration

import (
	"github.com/smallbiznis/tapledger/internal/config"
	"github.com/smallbiznis/tapledger/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			log.Info("schema migrations skipped")
			return nil
		}
		if err := Apply(conn); err != nil {
			return err
		}
		if cfg.SeedCatalogue {
			return seed.EnsureCatalogue(conn, seed.DefaultCatalogue())
		}
		return nil
	}),
)
