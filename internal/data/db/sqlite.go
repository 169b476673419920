package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

// OpenSQLite opens a file database; ":memory:" works for throwaway runs.
func OpenSQLite(logg *logger.Logger, path string) (*gorm.DB, error) {
	if path == "" {
		path = "scribe.db"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway; one connection avoids "database is locked".
	sqlDB.SetMaxOpenConns(1)

	logg.With("service", "SQLiteService").Info("Opened SQLite", "path", path)
	return db, nil
}
