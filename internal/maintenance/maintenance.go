// Package maintenance agrupa las tareas operativas que corre petfinderctl:
// re-ejecutar el matching de un reporte, limpiar matches de ingesta automatizada
// e importar imágenes de un bucket como reportes Found.
package maintenance

import (
	"context"
	"errors"
	"fmt"

	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/middleware"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/ports/extraction"
	"pet-lost-found/internal/ports/objectstore"
)

type Deps struct {
	Reports   *reports.Service
	Matching  *matching.Service
	Matches   matching.Repository
	Finder    *matching.Finder
	Bucket    objectstore.Lister
	Extractor extraction.Extractor
	Log       logger.Logger
}

type Runner struct {
	reports   *reports.Service
	matching  *matching.Service
	matches   matching.Repository
	finder    *matching.Finder
	bucket    objectstore.Lister
	extractor extraction.Extractor
	log       logger.Logger
}

func NewRunner(d Deps) *Runner {
	return &Runner{
		reports:   d.Reports,
		matching:  d.Matching,
		matches:   d.Matches,
		finder:    d.Finder,
		bucket:    d.Bucket,
		extractor: d.Extractor,
		log:       logger.OrNop(d.Log).With(map[string]any{"component": "maintenance"}),
	}
}

// Rematch vuelve a correr la búsqueda de matches para un reporte existente.
// Es idempotente: los pares ya creados no se duplican. Los reportes automatizados
// también se procesan, porque es una acción explícita del operador.
func (r *Runner) Rematch(ctx context.Context, reportID string) ([]matching.Match, error) {
	rep, err := r.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep.Status != reports.StatusActive {
		return nil, fmt.Errorf("report %s is %s; only active reports can be rematched", rep.ID, rep.Status)
	}

	created, err := r.finder.Find(ctx, rep)
	if err != nil {
		return created, err
	}
	r.log.Info("rematch done", map[string]any{"report_id": rep.ID, "created": len(created)})
	return created, nil
}

// Decide aplica una decisión sobre un match en nombre del actor del contexto
// (middleware.WithActor); sin actor queda "anonymous".
func (r *Runner) Decide(ctx context.Context, matchID, decision string) (matching.Match, error) {
	if r.matching == nil {
		return matching.Match{}, errors.New("decide requires the match service")
	}
	d, err := matching.ParseDecision(decision)
	if err != nil {
		return matching.Match{}, err
	}

	actor := middleware.Actor(ctx)
	m, err := r.matching.Decide(ctx, matchID, d, actor)
	if err != nil {
		return m, err
	}
	r.log.Info("match decided by operator", map[string]any{"match_id": m.ID, "status": string(m.Status), "actor": actor})
	return m, nil
}

type CleanupResult struct {
	Reports        int
	DeletedMatches int
	Reopened       int
}

// CleanupAutomated borra los matches que involucran reportes de usuarios automatizados
// y devuelve a active los que hubieran quedado en found.
func (r *Runner) CleanupAutomated(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult

	for _, userID := range r.reports.AutomatedUserIDs() {
		items, err := r.reports.List(ctx, reports.ListQuery{Filter: reports.ListFilter{UserID: userID}})
		if err != nil {
			return res, fmt.Errorf("list reports of %s: %w", userID, err)
		}

		for _, rep := range items {
			res.Reports++

			n, err := r.matches.DeleteByReport(ctx, rep.ID)
			if err != nil {
				return res, fmt.Errorf("delete matches of %s: %w", rep.ID, err)
			}
			res.DeletedMatches += n

			reopened, err := r.reports.Reopen(ctx, rep.ID)
			if err != nil {
				return res, fmt.Errorf("reopen %s: %w", rep.ID, err)
			}
			if reopened {
				res.Reopened++
			}
		}
	}

	r.log.Info("automated cleanup done", map[string]any{
		"reports":         res.Reports,
		"deleted_matches": res.DeletedMatches,
		"reopened":        res.Reopened,
	})
	return res, nil
}
