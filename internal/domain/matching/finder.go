package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"

	"github.com/google/uuid"
)

// CandidateSource devuelve el pool de candidatos (activos, tipo dado, misma categoría).
type CandidateSource interface {
	ListCandidates(ctx context.Context, kind reports.Kind, petType string) ([]reports.Report, error)
}

// Finder busca matches para un reporte recién creado.
type Finder struct {
	candidates CandidateSource
	repo       Repository
	dispatcher *Dispatcher
	log        logger.Logger
	metrics    *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewFinder(candidates CandidateSource, repo Repository, dispatcher *Dispatcher, log logger.Logger, m *metrics.Metrics) *Finder {
	return &Finder{
		candidates: candidates,
		repo:       repo,
		dispatcher: dispatcher,
		log:        logger.OrNop(log).With(map[string]any{"component": "match_finder"}),
		metrics:    m,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// OnReportCreated es el punto de degradación: cualquier falla se loguea como
// MatchSearchError y nunca llega a quien creó el reporte.
func (f *Finder) OnReportCreated(ctx context.Context, r reports.Report) []Match {
	created, err := f.Find(ctx, r)
	if err != nil {
		f.metrics.MatchSearchFailed()
		f.log.Error("match search failed", map[string]any{
			"report_id": r.ID,
			"err":       &apperr.MatchSearchError{ReportID: r.ID, Err: err},
		})
	}
	return created
}

// Find recorre los candidatos en orden y crea un match por cada uno con score perfecto.
// Es idempotente por par: un par existente se saltea. Devuelve los matches creados
// en esta llamada, aun si falla a mitad de camino.
func (f *Finder) Find(ctx context.Context, r reports.Report) ([]Match, error) {
	pool, err := f.candidates.ListCandidates(ctx, r.Kind.Opposite(), r.PetType)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	created := make([]Match, 0)
	for _, c := range pool {
		if c.ID == r.ID || c.Kind == r.Kind || !reports.SamePetType(c.PetType, r.PetType) {
			continue
		}

		lost, found := r, c
		if r.Kind == reports.KindFound {
			lost, found = c, r
		}

		score, fields := Score(lost.Attributes, found.Attributes)
		if score != MaxScore {
			continue
		}

		m, ok, err := f.createOnce(ctx, lost, found, score, fields)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}

		created = append(created, m)
		f.metrics.MatchCreated()
		f.log.Info("match created", map[string]any{
			"match_id":        m.ID,
			"lost_report_id":  lost.ID,
			"found_report_id": found.ID,
			"score":           score,
		})

		if f.dispatcher != nil {
			f.dispatcher.Dispatch(ctx, m, lost, found)
		}
	}
	return created, nil
}

// createOnce revisa el par y luego inserta. El chequeo previo evita trabajo;
// la unicidad real la da el storage (ErrDuplicatePair).
func (f *Finder) createOnce(ctx context.Context, lost, found reports.Report, score int, fields []string) (Match, bool, error) {
	if _, err := f.repo.FindByPair(ctx, lost.ID, found.ID); err == nil {
		return Match{}, false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return Match{}, false, fmt.Errorf("find pair: %w", err)
	}

	now := f.now()
	m := Match{
		ID:            f.newID(),
		LostReportID:  lost.ID,
		FoundReportID: found.ID,
		Score:         score,
		MatchedFields: fields,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := f.repo.Create(ctx, m); err != nil {
		if errors.Is(err, ErrDuplicatePair) {
			f.log.Debug("match pair created concurrently, skipping", map[string]any{
				"lost_report_id":  lost.ID,
				"found_report_id": found.ID,
			})
			return Match{}, false, nil
		}
		return Match{}, false, fmt.Errorf("create match: %w", err)
	}
	return m, true, nil
}
