package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/matching"
)

type MatchesRepo struct {
	db *sql.DB
}

func NewMatchesRepo(db *sql.DB) *MatchesRepo {
	return &MatchesRepo{db: db}
}

const matchColumns = `
	id, lost_report_id, found_report_id,
	score, matched_fields, status,
	decided_by, decided_at,
	created_at, updated_at`

// Create se apoya en el UNIQUE (lost_report_id, found_report_id):
// si el par ya existe no inserta nada y devuelve ErrDuplicatePair.
func (r *MatchesRepo) Create(ctx context.Context, m matching.Match) error {
	fields, err := encodeList(m.MatchedFields)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (lost_report_id, found_report_id) DO NOTHING
	`,
		m.ID,
		m.LostReportID,
		m.FoundReportID,
		m.Score,
		fields,
		string(m.Status),
		m.DecidedBy,
		toNullTime(m.DecidedAt),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return matching.ErrDuplicatePair
	}
	return nil
}

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (matching.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matching.Match{}, apperr.NotFound("match", id)
		}
		return matching.Match{}, err
	}
	return m, nil
}

func (r *MatchesRepo) FindByPair(ctx context.Context, lostReportID, foundReportID string) (matching.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE lost_report_id = $1 AND found_report_id = $2
	`, lostReportID, foundReportID)

	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matching.Match{}, apperr.NotFound("match", lostReportID+"/"+foundReportID)
		}
		return matching.Match{}, err
	}
	return m, nil
}

// ApplyDecision es un compare-and-set sobre status = 'pending'.
func (r *MatchesRepo) ApplyDecision(ctx context.Context, id string, status matching.Status, actor string, at time.Time) (matching.Match, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE matches
		SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, string(status), actor, at.UTC())
	if err != nil {
		return matching.Match{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return matching.Match{}, err
	}
	if n == 0 {
		// No existe o ya no está pending.
		if _, err := r.GetByID(ctx, id); err != nil {
			return matching.Match{}, err
		}
		return matching.Match{}, matching.ErrNotPending
	}
	return r.GetByID(ctx, id)
}

func (r *MatchesRepo) List(ctx context.Context, f matching.ListFilter) ([]matching.Match, error) {
	var (
		where []string
		args  []any
	)

	if f.ReportID != "" {
		args = append(args, f.ReportID)
		where = append(where, fmt.Sprintf("(lost_report_id = $%d OR found_report_id = $%d)", len(args), len(args)))
	}
	if len(f.ReportIDs) > 0 {
		marks := make([]string, 0, len(f.ReportIDs))
		for _, id := range f.ReportIDs {
			args = append(args, id)
			marks = append(marks, fmt.Sprintf("$%d", len(args)))
		}
		in := strings.Join(marks, ",")
		where = append(where, fmt.Sprintf("(lost_report_id IN (%s) OR found_report_id IN (%s))", in, in))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	q := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MatchesRepo) DeleteByReport(ctx context.Context, reportID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM matches
		WHERE lost_report_id = $1 OR found_report_id = $1
	`, reportID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanMatch(s scanner) (matching.Match, error) {
	var (
		m         matching.Match
		status    string
		fields    string
		decidedAt sql.NullTime
	)
	if err := s.Scan(
		&m.ID,
		&m.LostReportID,
		&m.FoundReportID,
		&m.Score,
		&fields,
		&status,
		&m.DecidedBy,
		&decidedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return matching.Match{}, err
	}

	m.Status = matching.Status(status)
	if decidedAt.Valid {
		t := decidedAt.Time
		m.DecidedAt = &t
	}

	var err error
	if m.MatchedFields, err = decodeList(fields); err != nil {
		return matching.Match{}, fmt.Errorf("decode matched_fields: %w", err)
	}
	return m, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
