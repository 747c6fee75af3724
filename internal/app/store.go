package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/data/db"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		gdb, err := db.OpenSQLite(log, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrateAll(gdb); err != nil {
			return nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		return gdb, nil
	default:
		pg, err := db.NewPostgresService(log, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := pg.AutoMigrateAll(); err != nil {
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		return pg.DB(), nil
	}
}
