package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

// OpenSQLite opens a SQLite database for local runs and tests. A single
// connection is kept so that ":memory:" databases survive across calls and
// writers serialise like they would under row locks.
func OpenSQLite(logg *logger.Logger, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if logg != nil {
		logg.With("service", "SQLite").Debug("Opened sqlite database", "dsn", dsn)
	}
	return db, nil
}
