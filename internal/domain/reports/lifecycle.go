package reports

import (
	"context"
	"errors"

	"pet-lost-found/internal/apperr"
)

// MarkFound pasa el reporte a found. Si el reporte no existe (match viejo con
// referencia colgante) se loguea y no es error.
func (s *Service) MarkFound(ctx context.Context, reportID string) error {
	log := s.log.With(map[string]any{"report_id": reportID})

	r, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn("mark found: report not found, skipping", nil)
			return nil
		}
		return err
	}
	if r.Status == StatusFound {
		return nil
	}

	if err := s.repo.SetStatus(ctx, r.ID, StatusFound, s.now()); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn("mark found: report disappeared, skipping", nil)
			return nil
		}
		return err
	}

	log.Info("report marked as found", map[string]any{"previous_status": string(r.Status)})
	return nil
}

// Reopen devuelve un reporte found a active (limpieza de matches automatizados).
// Un reporte en otro estado queda igual.
func (s *Service) Reopen(ctx context.Context, reportID string) (bool, error) {
	r, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return false, err
	}
	if r.Status != StatusFound {
		return false, nil
	}
	if err := s.repo.SetStatus(ctx, r.ID, StatusActive, s.now()); err != nil {
		return false, err
	}

	s.log.Info("report reopened", map[string]any{"report_id": r.ID})
	return true, nil
}
