package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/matching"
)

type pairKey struct {
	lost  string
	found string
}

// matchesRepo mantiene un índice único por par, equivalente al UNIQUE de Postgres.
type matchesRepo struct {
	mu     sync.RWMutex
	byID   map[string]matching.Match
	byPair map[pairKey]string
}

func NewMatchesRepo() matching.Repository {
	return &matchesRepo{
		byID:   make(map[string]matching.Match),
		byPair: make(map[pairKey]string),
	}
}

func (r *matchesRepo) Create(ctx context.Context, m matching.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("match id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("match already exists")
	}
	key := pairKey{lost: m.LostReportID, found: m.FoundReportID}
	if _, exists := r.byPair[key]; exists {
		return matching.ErrDuplicatePair
	}

	r.byID[m.ID] = cloneMatch(m)
	r.byPair[key] = m.ID
	return nil
}

func (r *matchesRepo) GetByID(ctx context.Context, id string) (matching.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return matching.Match{}, apperr.NotFound("match", id)
	}
	return cloneMatch(m), nil
}

func (r *matchesRepo) FindByPair(ctx context.Context, lostReportID, foundReportID string) (matching.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[pairKey{lost: lostReportID, found: foundReportID}]
	if !ok {
		return matching.Match{}, apperr.NotFound("match", lostReportID+"/"+foundReportID)
	}
	return cloneMatch(r.byID[id]), nil
}

func (r *matchesRepo) ApplyDecision(ctx context.Context, id string, status matching.Status, actor string, at time.Time) (matching.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return matching.Match{}, apperr.NotFound("match", id)
	}
	if m.Status != matching.StatusPending {
		return matching.Match{}, matching.ErrNotPending
	}

	decidedAt := at
	m.Status = status
	m.DecidedBy = actor
	m.DecidedAt = &decidedAt
	m.UpdatedAt = at
	r.byID[id] = m
	return cloneMatch(m), nil
}

func (r *matchesRepo) List(ctx context.Context, f matching.ListFilter) ([]matching.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]matching.Match, 0)
	for _, m := range r.byID {
		if f.ReportID != "" && !m.Involves(f.ReportID) {
			continue
		}
		if len(f.ReportIDs) > 0 && !m.InvolvesAny(f.ReportIDs) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, cloneMatch(m))
	}

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

func (r *matchesRepo) DeleteByReport(ctx context.Context, reportID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, m := range r.byID {
		if !m.Involves(reportID) {
			continue
		}
		delete(r.byID, id)
		delete(r.byPair, pairKey{lost: m.LostReportID, found: m.FoundReportID})
		n++
	}
	return n, nil
}

func cloneMatch(m matching.Match) matching.Match {
	m.MatchedFields = append([]string(nil), m.MatchedFields...)
	if m.DecidedAt != nil {
		t := *m.DecidedAt
		m.DecidedAt = &t
	}
	return m
}
