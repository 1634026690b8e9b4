package sqlite

import (
	"database/sql"

	"pet-lost-found/internal/adapters/storage/postgres"
	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
)

// Los repos SQL de postgres usan SQL portable ($N, ON CONFLICT DO NOTHING, pet_type_key normalizado en Go),
// así que se reutilizan tal cual sobre la conexión SQLite.

func NewReportsRepo(db *sql.DB) reports.Repository {
	return postgres.NewReportsRepo(db)
}

func NewMatchesRepo(db *sql.DB) matching.Repository {
	return postgres.NewMatchesRepo(db)
}
