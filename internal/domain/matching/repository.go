package matching

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicatePair: ya existe un match para el par (lost, found). Es la señal de idempotencia.
	ErrDuplicatePair = errors.New("match pair already exists")
	// ErrNotPending: el compare-and-set de la decisión no encontró el match en pending.
	ErrNotPending = errors.New("match is not pending")
)

// ListFilter: los campos vacíos no filtran. ReportID matchea el lado lost o found;
// ReportIDs hace lo mismo con cualquiera de los ids.
type ListFilter struct {
	ReportID  string
	ReportIDs []string
	Status    Status
	Limit     int
}

// Repository persiste matches. GetByID, FindByPair y ApplyDecision devuelven
// apperr.NotFoundError si no existe. List devuelve del más nuevo al más viejo.
type Repository interface {
	// Create debe garantizar unicidad del par a nivel storage y devolver ErrDuplicatePair.
	Create(ctx context.Context, m Match) error
	GetByID(ctx context.Context, id string) (Match, error)
	FindByPair(ctx context.Context, lostReportID, foundReportID string) (Match, error)
	// ApplyDecision aplica la transición solo si el match sigue en pending.
	ApplyDecision(ctx context.Context, id string, status Status, actor string, at time.Time) (Match, error)
	List(ctx context.Context, f ListFilter) ([]Match, error)
	DeleteByReport(ctx context.Context, reportID string) (int, error)
}
