package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/reports"
)

// ReportsRepo usa SQL portable ($N, TEXT con JSON) para servir también a SQLite.
// pet_type_key se normaliza en Go: LOWER de SQLite sólo pliega ASCII.
type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

const reportColumns = `
	id, user_id, report_type,
	pet_name, pet_type,
	contact_name, contact_email, contact_phone, location,
	image_urls,
	species, breed, primary_color, age_group, size, marks,
	description, status,
	created_at, updated_at`

func (r *ReportsRepo) Create(ctx context.Context, rep reports.Report) error {
	urls, err := encodeList(rep.ImageURLs)
	if err != nil {
		return err
	}
	marks, err := encodeList(rep.Attributes.Marks)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (`+reportColumns+`, pet_type_key
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		rep.ID,
		rep.UserID,
		string(rep.Kind),
		rep.PetName,
		rep.PetType,
		rep.Contact.Name,
		rep.Contact.Email,
		rep.Contact.Phone,
		rep.Contact.Location,
		urls,
		rep.Attributes.Species,
		rep.Attributes.Breed,
		rep.Attributes.PrimaryColor,
		rep.Attributes.AgeGroup,
		rep.Attributes.Size,
		marks,
		rep.Description,
		string(rep.Status),
		rep.CreatedAt.UTC(),
		rep.UpdatedAt.UTC(),
		reports.PetTypeKey(rep.PetType),
	)
	return err
}

func (r *ReportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.Report{}, apperr.NotFound("report", id)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)

	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reports.Report{}, apperr.NotFound("report", id)
		}
		return reports.Report{}, err
	}
	return rep, nil
}

func (r *ReportsRepo) SetStatus(ctx context.Context, id string, status reports.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, string(status), at.UTC())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.NotFound("report", id)
	}
	return nil
}

func (r *ReportsRepo) List(ctx context.Context, f reports.ListFilter) ([]reports.Report, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Kind != "" {
		add("report_type = $%d", string(f.Kind))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if key := reports.PetTypeKey(f.PetType); key != "" {
		add("pet_type_key = $%d", key)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}

	q := `SELECT ` + reportColumns + ` FROM reports`
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

	out := make([]reports.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (reports.Report, error) {
	var (
		rep          reports.Report
		kind, status string
		urls, marks  string
	)
	if err := s.Scan(
		&rep.ID,
		&rep.UserID,
		&kind,
		&rep.PetName,
		&rep.PetType,
		&rep.Contact.Name,
		&rep.Contact.Email,
		&rep.Contact.Phone,
		&rep.Contact.Location,
		&urls,
		&rep.Attributes.Species,
		&rep.Attributes.Breed,
		&rep.Attributes.PrimaryColor,
		&rep.Attributes.AgeGroup,
		&rep.Attributes.Size,
		&marks,
		&rep.Description,
		&status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	); err != nil {
		return reports.Report{}, err
	}

	rep.Kind = reports.Kind(kind)
	rep.Status = reports.Status(status)

	var err error
	if rep.ImageURLs, err = decodeList(urls); err != nil {
		return reports.Report{}, fmt.Errorf("decode image_urls: %w", err)
	}
	if rep.Attributes.Marks, err = decodeList(marks); err != nil {
		return reports.Report{}, fmt.Errorf("decode marks: %w", err)
	}
	return rep, nil
}

// Listas como JSON en columnas TEXT: mismo formato en Postgres y SQLite.
func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
