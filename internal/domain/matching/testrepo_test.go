package matching

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/reports"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testMatchRepo struct {
	mu        sync.Mutex
	byID      map[string]Match
	createErr error
	// skipPairCheck simula una carrera: FindByPair no ve lo que Create sí rechaza.
	skipPairCheck bool
	lastFilter    ListFilter
}

func newTestMatchRepo() *testMatchRepo {
	return &testMatchRepo{byID: map[string]Match{}}
}

func (r *testMatchRepo) Create(ctx context.Context, m Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, ex := range r.byID {
		if ex.LostReportID == m.LostReportID && ex.FoundReportID == m.FoundReportID {
			return ErrDuplicatePair
		}
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testMatchRepo) GetByID(ctx context.Context, id string) (Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return Match{}, apperr.NotFound("match", id)
	}
	return m, nil
}

func (r *testMatchRepo) FindByPair(ctx context.Context, lostID, foundID string) (Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.skipPairCheck {
		for _, m := range r.byID {
			if m.LostReportID == lostID && m.FoundReportID == foundID {
				return m, nil
			}
		}
	}
	return Match{}, apperr.NotFound("match", lostID+"/"+foundID)
}

func (r *testMatchRepo) ApplyDecision(ctx context.Context, id string, st Status, actor string, at time.Time) (Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return Match{}, apperr.NotFound("match", id)
	}
	if m.Status != StatusPending {
		return Match{}, ErrNotPending
	}
	m.Status = st
	m.DecidedBy = actor
	m.DecidedAt = &at
	m.UpdatedAt = at
	r.byID[id] = m
	return m, nil
}

func (r *testMatchRepo) List(ctx context.Context, f ListFilter) ([]Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = f
	out := make([]Match, 0)
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
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *testMatchRepo) DeleteByReport(ctx context.Context, reportID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, m := range r.byID {
		if m.Involves(reportID) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// testPool implementa CandidateSource, ReportMarker y ReportReader sobre un map.
type testPool struct {
	byID    map[string]reports.Report
	listErr error
	markErr error
}

func newTestPool(rs ...reports.Report) *testPool {
	p := &testPool{byID: map[string]reports.Report{}}
	for _, r := range rs {
		p.byID[r.ID] = r
	}
	return p
}

func (p *testPool) ListCandidates(ctx context.Context, kind reports.Kind, petType string) ([]reports.Report, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]reports.Report, 0)
	for _, r := range p.byID {
		if r.Kind == kind && r.Status == reports.StatusActive && reports.SamePetType(r.PetType, petType) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *testPool) MarkFound(ctx context.Context, id string) error {
	if p.markErr != nil {
		return p.markErr
	}
	r, ok := p.byID[id]
	if !ok {
		return nil
	}
	r.Status = reports.StatusFound
	p.byID[id] = r
	return nil
}

func (p *testPool) Get(ctx context.Context, id string) (reports.Report, error) {
	r, ok := p.byID[id]
	if !ok {
		return reports.Report{}, apperr.NotFound("report", id)
	}
	return r, nil
}

var errBoom = errors.New("boom")

func report(id string, kind reports.Kind, petType, species, breed, color string) reports.Report {
	return reports.Report{
		ID:      id,
		UserID:  "user-" + id,
		Kind:    kind,
		PetType: petType,
		Contact: reports.Contact{Name: "Owner " + id, Email: id + "@example.com", Location: "Park " + id},
		Attributes: reports.Attributes{
			Species:      species,
			Breed:        breed,
			PrimaryColor: color,
		},
		ImageURLs: []string{"https://img/" + id + ".jpg"},
		Status:    reports.StatusActive,
	}
}
