package matching

import (
	"context"
	"sync"
	"testing"

	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/ports/notify"
)

type recordingNotifier struct {
	mu      sync.Mutex
	name    string
	err     error
	notices []notify.MatchNotice
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Notify(ctx context.Context, notice notify.MatchNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func newTestFinder(pool *testPool, repo *testMatchRepo, notifiers ...notify.Notifier) *Finder {
	return NewFinder(pool, repo, NewDispatcher(notifiers, 0, nil, nil), nil, nil)
}

func TestFind_CreatesPerfectMatchWithOrientation(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "dog", "dog", " labrador", "BROWN")
	pool := newTestPool(lost, found)
	repo := newTestMatchRepo()
	n := &recordingNotifier{name: "test"}

	created, err := newTestFinder(pool, repo, n).Find(context.Background(), found)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 match, got %d", len(created))
	}
	m := created[0]
	if m.LostReportID != "l1" || m.FoundReportID != "f1" {
		t.Fatalf("wrong orientation: %+v", m)
	}
	if m.Score != 3 || m.Status != StatusPending || len(m.MatchedFields) != 3 {
		t.Fatalf("unexpected match: %+v", m)
	}

	if len(n.notices) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(n.notices))
	}
	got := n.notices[0]
	if got.OwnerEmail != "l1@example.com" || got.FoundLocation != "Park f1" || got.FoundImageURL != "https://img/f1.jpg" {
		t.Fatalf("notice should target the lost owner with found details: %+v", got)
	}
}

func TestFind_LostSideNewReport(t *testing.T) {
	found := report("f1", reports.KindFound, "Cat", "Cat", "Siamese", "Cream")
	lost := report("l1", reports.KindLost, "Cat", "Cat", "Siamese", "Cream")
	pool := newTestPool(found, lost)
	repo := newTestMatchRepo()

	created, err := newTestFinder(pool, repo).Find(context.Background(), lost)
	if err != nil || len(created) != 1 {
		t.Fatalf("expected 1 match, got %d err=%v", len(created), err)
	}
	if created[0].LostReportID != "l1" || created[0].FoundReportID != "f1" {
		t.Fatalf("wrong orientation: %+v", created[0])
	}
}

func TestFind_IsIdempotentPerPair(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "Dog", "Dog", "Labrador", "Brown")
	pool := newTestPool(lost, found)
	repo := newTestMatchRepo()
	f := newTestFinder(pool, repo)

	if created, _ := f.Find(context.Background(), found); len(created) != 1 {
		t.Fatalf("expected first run to create 1 match")
	}
	created, err := f.Find(context.Background(), found)
	if err != nil {
		t.Fatalf("second find: %v", err)
	}
	if len(created) != 0 || len(repo.byID) != 1 {
		t.Fatalf("expected no duplicates: created=%d stored=%d", len(created), len(repo.byID))
	}
}

func TestFind_StorageUniquenessClosesRace(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "Dog", "Dog", "Labrador", "Brown")
	pool := newTestPool(lost, found)
	repo := newTestMatchRepo()
	repo.skipPairCheck = true
	n := &recordingNotifier{name: "test"}
	f := newTestFinder(pool, repo, n)

	_, _ = f.Find(context.Background(), found)
	created, err := f.Find(context.Background(), found)
	if err != nil {
		t.Fatalf("duplicate pair must not be an error: %v", err)
	}
	if len(created) != 0 || len(repo.byID) != 1 {
		t.Fatalf("expected storage to reject the duplicate")
	}
	if len(n.notices) != 1 {
		t.Fatalf("duplicate must not notify again, got %d notices", len(n.notices))
	}
}

func TestFind_RequiresPerfectScore(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "Dog", "Dog", "Labrador", "Black")
	repo := newTestMatchRepo()

	created, err := newTestFinder(newTestPool(lost, found), repo).Find(context.Background(), found)
	if err != nil || len(created) != 0 || len(repo.byID) != 0 {
		t.Fatalf("score 2 must not create a match: created=%d err=%v", len(created), err)
	}
}

func TestFind_PetTypePartition(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "Cat", "Dog", "Labrador", "Brown")
	repo := newTestMatchRepo()

	created, _ := newTestFinder(newTestPool(lost, found), repo).Find(context.Background(), found)
	if len(created) != 0 {
		t.Fatalf("a Dog report must never match a Cat report")
	}
}

func TestFind_ExcludesResolvedReports(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	lost.Status = reports.StatusFound
	other := report("l2", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f2", reports.KindFound, "Dog", "Dog", "Labrador", "Brown")
	repo := newTestMatchRepo()

	created, _ := newTestFinder(newTestPool(lost, other, found), repo).Find(context.Background(), found)
	if len(created) != 1 || created[0].LostReportID != "l2" {
		t.Fatalf("expected a match only against the active lost report, got %+v", created)
	}
}

func TestFind_NotificationFailureDoesNotBlock(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "Dog", "Dog", "Labrador", "Brown")
	repo := newTestMatchRepo()
	failing := &recordingNotifier{name: "email", err: errBoom}

	created, err := newTestFinder(newTestPool(lost, found), repo, failing).Find(context.Background(), found)
	if err != nil || len(created) != 1 {
		t.Fatalf("notification failure must not affect match creation: created=%d err=%v", len(created), err)
	}
}

func TestOnReportCreated_SwallowsSearchErrors(t *testing.T) {
	pool := newTestPool()
	pool.listErr = errBoom
	f := newTestFinder(pool, newTestMatchRepo())

	created := f.OnReportCreated(context.Background(), report("f1", reports.KindFound, "Dog", "Dog", "Lab", "Brown"))
	if len(created) != 0 {
		t.Fatalf("expected no matches on search failure")
	}
}

func TestOnReportCreated_CreateErrorReturnsPartial(t *testing.T) {
	lost := report("l1", reports.KindLost, "Dog", "Dog", "Labrador", "Brown")
	found := report("f1", reports.KindFound, "Dog", "Dog", "Labrador", "Brown")
	repo := newTestMatchRepo()
	repo.createErr = errBoom

	created := newTestFinder(newTestPool(lost, found), repo).OnReportCreated(context.Background(), found)
	if len(created) != 0 {
		t.Fatalf("expected nothing created")
	}
}
