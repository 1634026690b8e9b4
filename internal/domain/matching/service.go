package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"

	"github.com/google/uuid"
)

// ReportMarker es la parte del ciclo de vida de reportes que usa una decisión aceptada.
type ReportMarker interface {
	MarkFound(ctx context.Context, reportID string) error
}

// Service es el ciclo de vida de los matches: pending -> accepted | rejected, una sola vez.
type Service struct {
	repo    Repository
	reports ReportMarker
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, reports ReportMarker, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		reports: reports,
		log:     logger.OrNop(log).With(map[string]any{"component": "match_lifecycle"}),
		metrics: m,
		now:     time.Now,
	}
}

// Decide aplica la decisión sobre un match pending. Si se acepta, marca el Lost
// como found; si eso falla se loguea y la decisión igual se informa como exitosa.
func (s *Service) Decide(ctx context.Context, matchID string, d Decision, actor string) (Match, error) {
	matchID = strings.TrimSpace(matchID)
	if err := ValidateID(matchID); err != nil {
		return Match{}, err
	}
	target := d.Status()
	if target == "" {
		return Match{}, apperr.Invalid("decision", "must be accept or reject")
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "anonymous"
	}

	current, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return Match{}, err
	}
	if current.Status != StatusPending {
		return Match{}, apperr.ConflictError{Resource: "match", ID: matchID, Current: string(current.Status)}
	}

	m, err := s.repo.ApplyDecision(ctx, matchID, target, actor, s.now())
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			// Otra decisión ganó la carrera entre el GetByID y el compare-and-set.
			latest, gerr := s.repo.GetByID(ctx, matchID)
			if gerr != nil {
				return Match{}, gerr
			}
			return Match{}, apperr.ConflictError{Resource: "match", ID: matchID, Current: string(latest.Status)}
		}
		return Match{}, fmt.Errorf("apply decision: %w", err)
	}

	s.metrics.Decision(string(d))
	log := s.log.With(map[string]any{"match_id": m.ID, "decision": string(d), "actor": actor})
	log.Info("match decided", nil)

	if target == StatusAccepted && s.reports != nil {
		if err := s.reports.MarkFound(ctx, m.LostReportID); err != nil {
			log.Error("accept side effect failed: lost report not marked as found", map[string]any{
				"lost_report_id": m.LostReportID,
				"err":            err,
			})
		}
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (Match, error) {
	if err := ValidateID(id); err != nil {
		return Match{}, err
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Match, error) {
	return s.repo.List(ctx, f)
}

// MatchedReportIDs marca los reportes (de ids) que tienen al menos un match aceptado.
func (s *Service) MatchedReportIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(ids) == 0 {
		return out, nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	accepted, err := s.repo.List(ctx, ListFilter{Status: StatusAccepted, ReportIDs: ids})
	if err != nil {
		return nil, err
	}

	for _, m := range accepted {
		for _, id := range []string{m.LostReportID, m.FoundReportID} {
			if _, ok := want[id]; ok {
				out[id] = true
			}
		}
	}
	return out, nil
}

// ValidateID exige formato UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return apperr.Invalid("match_id", "must be a UUID")
	}
	return nil
}
