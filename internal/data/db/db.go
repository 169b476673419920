package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver     string `validate:"omitempty,oneof=postgres sqlite"`
	SQLitePath string
	Postgres   PostgresConfig
}

func Open(logg *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		return OpenPostgres(logg, cfg.Postgres)
	case DriverSQLite:
		return OpenSQLite(logg, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}
