package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pet-lost-found/internal/adapters/storage/postgres"
	"pet-lost-found/internal/domain/reports"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const DefaultPath = "petfinder.db"

// Open abre (o crea) la base SQLite y aplica el schema.
// path vacío usa DefaultPath; ":memory:" sirve para tests.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Un solo writer: SQLite serializa escrituras y ":memory:" es por conexión.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string) string {
	q := "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
	if path == ":memory:" {
		q = "_pragma=busy_timeout(5000)&_time_format=sqlite"
	}
	return "file:" + path + "?" + q
}

// Migrate reaplica el schema; Open ya lo hace, sirve para bases abiertas por fuera.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := postgres.Apply(ctx, db, Schema); err != nil {
		return err
	}
	if err := ensurePetTypeKey(ctx, db); err != nil {
		return fmt.Errorf("pet_type_key: %w", err)
	}
	return postgres.Apply(ctx, db, Indexes)
}

// ensurePetTypeKey agrega la columna si falta y la completa desde Go,
// porque lower() de SQLite no pliega fuera de ASCII.
func ensurePetTypeKey(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('reports') WHERE name = 'pet_type_key'`,
	).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if _, err := db.ExecContext(ctx, `ALTER TABLE reports ADD COLUMN pet_type_key TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}

	rows, err := db.QueryContext(ctx, `SELECT id, pet_type FROM reports WHERE pet_type_key = ''`)
	if err != nil {
		return err
	}
	pending := map[string]string{}
	for rows.Next() {
		var id, petType string
		if err := rows.Scan(&id, &petType); err != nil {
			_ = rows.Close()
			return err
		}
		pending[id] = reports.PetTypeKey(petType)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for id, key := range pending {
		if key == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, `UPDATE reports SET pet_type_key = $1 WHERE id = $2`, key, id); err != nil {
			return err
		}
	}
	return nil
}
