package postgres

// Schema: la unicidad del par (lost, found) vive en el storage;
// el índice compuesto cubre la búsqueda de candidatos.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		report_type    TEXT NOT NULL CHECK (report_type IN ('Lost', 'Found')),
		pet_name       TEXT NOT NULL DEFAULT '',
		pet_type       TEXT NOT NULL,
		pet_type_key   TEXT NOT NULL DEFAULT '',
		contact_name   TEXT NOT NULL DEFAULT '',
		contact_email  TEXT NOT NULL DEFAULT '',
		contact_phone  TEXT NOT NULL DEFAULT '',
		location       TEXT NOT NULL DEFAULT '',
		image_urls     TEXT NOT NULL DEFAULT '[]',
		species        TEXT NOT NULL DEFAULT 'Unknown',
		breed          TEXT NOT NULL DEFAULT 'Unknown',
		primary_color  TEXT NOT NULL DEFAULT 'Unknown',
		age_group      TEXT NOT NULL DEFAULT 'Unknown',
		size           TEXT NOT NULL DEFAULT 'Unknown',
		marks          TEXT NOT NULL DEFAULT '[]',
		description    TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL CHECK (status IN ('active', 'found', 'closed')),
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`ALTER TABLE reports ADD COLUMN IF NOT EXISTS pet_type_key TEXT NOT NULL DEFAULT ''`,
	`UPDATE reports SET pet_type_key = lower(trim(pet_type)) WHERE pet_type_key = ''`,
	`DROP INDEX IF EXISTS reports_candidates_idx`,
	`CREATE INDEX IF NOT EXISTS reports_candidates_key_idx
		ON reports (report_type, status, pet_type_key)`,
	`CREATE INDEX IF NOT EXISTS reports_created_at_idx ON reports (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS reports_user_id_idx ON reports (user_id)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id               TEXT PRIMARY KEY,
		lost_report_id   TEXT NOT NULL,
		found_report_id  TEXT NOT NULL,
		score            INTEGER NOT NULL,
		matched_fields   TEXT NOT NULL DEFAULT '[]',
		status           TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected')),
		decided_by       TEXT NOT NULL DEFAULT '',
		decided_at       TIMESTAMPTZ NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		CONSTRAINT matches_pair_uniq UNIQUE (lost_report_id, found_report_id)
	)`,
	`CREATE INDEX IF NOT EXISTS matches_found_report_idx ON matches (found_report_id)`,
	`CREATE INDEX IF NOT EXISTS matches_status_idx ON matches (status, created_at DESC)`,
}
