package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/reports"
)

type reportsRepo struct {
	mu   sync.RWMutex
	byID map[string]reports.Report
}

func NewReportsRepo() reports.Repository {
	return &reportsRepo{
		byID: make(map[string]reports.Report),
	}
}

func (r *reportsRepo) Create(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("report id required")
	}
	if _, exists := r.byID[rep.ID]; exists {
		return errors.New("report already exists")
	}
	r.byID[rep.ID] = cloneReport(rep)
	return nil
}

func (r *reportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[id]
	if !ok {
		return reports.Report{}, apperr.NotFound("report", id)
	}
	return cloneReport(rep), nil
}

func (r *reportsRepo) SetStatus(ctx context.Context, id string, status reports.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.byID[id]
	if !ok {
		return apperr.NotFound("report", id)
	}
	rep.Status = status
	rep.UpdatedAt = at
	r.byID[id] = rep
	return nil
}

func (r *reportsRepo) List(ctx context.Context, f reports.ListFilter) ([]reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.Report, 0)
	for _, rep := range r.byID {
		if f.Kind != "" && rep.Kind != f.Kind {
			continue
		}
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		if strings.TrimSpace(f.PetType) != "" && !reports.SamePetType(rep.PetType, f.PetType) {
			continue
		}
		if f.UserID != "" && rep.UserID != f.UserID {
			continue
		}
		out = append(out, cloneReport(rep))
	}

	// Orden estable: más nuevo primero, desempate por id.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// cloneReport evita que el caller mute slices guardados en el map.
func cloneReport(r reports.Report) reports.Report {
	r.ImageURLs = append([]string(nil), r.ImageURLs...)
	r.Attributes.Marks = append([]string{}, r.Attributes.Marks...)
	return r
}
