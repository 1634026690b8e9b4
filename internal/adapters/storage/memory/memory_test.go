package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
)

func TestReportsRepo_ListFiltersAndOrder(t *testing.T) {
	repo := NewReportsRepo()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seed := []reports.Report{
		{ID: "a", Kind: reports.KindLost, PetType: "Dog", Status: reports.StatusActive, CreatedAt: base},
		{ID: "b", Kind: reports.KindLost, PetType: "dog", Status: reports.StatusActive, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Kind: reports.KindLost, PetType: "Dog", Status: reports.StatusFound, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Kind: reports.KindFound, PetType: "Dog", Status: reports.StatusActive, CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, r := range seed {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}

	got, err := repo.List(ctx, reports.ListFilter{Kind: reports.KindLost, Status: reports.StatusActive, PetType: "DOG"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected [b a], got %v", ids(got))
	}

	all, _ := repo.List(ctx, reports.ListFilter{Limit: 1})
	if len(all) != 1 || all[0].ID != "d" {
		t.Fatalf("expected newest first with limit, got %v", ids(all))
	}
}

func TestReportsRepo_SetStatusAndNotFound(t *testing.T) {
	repo := NewReportsRepo()
	ctx := context.Background()
	_ = repo.Create(ctx, reports.Report{ID: "a", Status: reports.StatusActive})

	at := time.Now()
	if err := repo.SetStatus(ctx, "a", reports.StatusFound, at); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ := repo.GetByID(ctx, "a")
	if got.Status != reports.StatusFound || !got.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected report: %+v", got)
	}

	if err := repo.SetStatus(ctx, "zzz", reports.StatusFound, at); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "zzz"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMatchesRepo_PairUniquenessUnderConcurrency(t *testing.T) {
	repo := NewMatchesRepo()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, dup int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, matching.Match{
				ID:            "m-" + string(rune('a'+i)),
				LostReportID:  "l1",
				FoundReportID: "f1",
				Status:        matching.StatusPending,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, matching.ErrDuplicatePair):
				dup++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if ok != 1 || dup != 19 {
		t.Fatalf("expected exactly one winner, got ok=%d dup=%d", ok, dup)
	}
	if _, err := repo.FindByPair(ctx, "l1", "f1"); err != nil {
		t.Fatalf("find by pair: %v", err)
	}
	if _, err := repo.FindByPair(ctx, "f1", "l1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("pair is ordered; reversed lookup must miss")
	}
}

func TestMatchesRepo_ApplyDecisionIsCompareAndSet(t *testing.T) {
	repo := NewMatchesRepo()
	ctx := context.Background()
	_ = repo.Create(ctx, matching.Match{ID: "m1", LostReportID: "l1", FoundReportID: "f1", Status: matching.StatusPending})

	m, err := repo.ApplyDecision(ctx, "m1", matching.StatusRejected, "u1", time.Now())
	if err != nil || m.Status != matching.StatusRejected || m.DecidedBy != "u1" || m.DecidedAt == nil {
		t.Fatalf("unexpected first decision: %+v err=%v", m, err)
	}
	if _, err := repo.ApplyDecision(ctx, "m1", matching.StatusAccepted, "u2", time.Now()); !errors.Is(err, matching.ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	if _, err := repo.ApplyDecision(ctx, "missing", matching.StatusAccepted, "u2", time.Now()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMatchesRepo_DeleteByReportFreesPair(t *testing.T) {
	repo := NewMatchesRepo()
	ctx := context.Background()
	_ = repo.Create(ctx, matching.Match{ID: "m1", LostReportID: "l1", FoundReportID: "f1"})
	_ = repo.Create(ctx, matching.Match{ID: "m2", LostReportID: "l2", FoundReportID: "f1"})
	_ = repo.Create(ctx, matching.Match{ID: "m3", LostReportID: "l2", FoundReportID: "f2"})

	n, err := repo.DeleteByReport(ctx, "f1")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 deleted, got %d err=%v", n, err)
	}
	if err := repo.Create(ctx, matching.Match{ID: "m4", LostReportID: "l1", FoundReportID: "f1"}); err != nil {
		t.Fatalf("pair should be free after delete: %v", err)
	}
	left, _ := repo.List(ctx, matching.ListFilter{ReportID: "l2"})
	if len(left) != 1 || left[0].ID != "m3" {
		t.Fatalf("unexpected remaining matches: %+v", left)
	}
	byIDs, _ := repo.List(ctx, matching.ListFilter{ReportIDs: []string{"l1", "f2"}})
	if len(byIDs) != 2 {
		t.Fatalf("expected m3 and m4 by report ids, got %+v", byIDs)
	}
}

func ids(rs []reports.Report) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
