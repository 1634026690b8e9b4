package maintenance

import (
	"context"
	"database/sql"
	"fmt"

	"pet-lost-found/internal/adapters/storage/postgres"
	"pet-lost-found/internal/adapters/storage/sqlite"
	"pet-lost-found/internal/config"
)

// Migrate aplica el schema del driver configurado. Es idempotente.
func Migrate(ctx context.Context, driver string, db *sql.DB) error {
	switch driver {
	case config.DriverPostgres:
		return postgres.Migrate(ctx, db)
	case config.DriverSQLite:
		return sqlite.Migrate(ctx, db)
	default:
		return fmt.Errorf("store driver %q has no schema to migrate", driver)
	}
}
