package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/lektion/internal/store"
	"github.com/shrimpsizemoose/lektion/internal/store/postgres"
	"github.com/shrimpsizemoose/lektion/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.ScoreStore, error) {
	dbType := store.DBTypeSQLite
	if strings.HasPrefix(dsn, "postgres") {
		dbType = store.DBTypePostgres
	}

	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}

	switch dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn, migrationsDir)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(dsn, migrationsDir)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
