package reports

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/ports/extraction"
)

// -------------------------
// Test doubles
// -------------------------

type testRepo struct {
	byID map[string]Report
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Report{}}
}

func (r *testRepo) Create(ctx context.Context, rep Report) error {
	if _, ok := r.byID[rep.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rep.ID] = rep
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Report, error) {
	rep, ok := r.byID[id]
	if !ok {
		return Report{}, apperr.NotFound("report", id)
	}
	return rep, nil
}

func (r *testRepo) SetStatus(ctx context.Context, id string, st Status, at time.Time) error {
	rep, ok := r.byID[id]
	if !ok {
		return apperr.NotFound("report", id)
	}
	rep.Status = st
	rep.UpdatedAt = at
	r.byID[id] = rep
	return nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Report, error) {
	out := make([]Report, 0)
	for _, rep := range r.byID {
		if f.Kind != "" && rep.Kind != f.Kind {
			continue
		}
		if f.Status != "" && rep.Status != f.Status {
			continue
		}
		if f.PetType != "" && !SamePetType(rep.PetType, f.PetType) {
			continue
		}
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

type fakeStore struct {
	keys []string
	err  error
}

func (s *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	return "https://bucket.example/" + key, nil
}

type fakeExtractor struct {
	res   extraction.Result
	err   error
	block bool
	mimes []string
}

func (e *fakeExtractor) Extract(ctx context.Context, image []byte, mimeType string) (extraction.Result, error) {
	e.mimes = append(e.mimes, mimeType)
	if e.block {
		<-ctx.Done()
		return extraction.Result{}, ctx.Err()
	}
	return e.res, e.err
}

func newTestService(repo Repository, store *fakeStore, ex *fakeExtractor) *Service {
	svc := NewService(repo, store, ex, Config{ExtractionTimeout: 50 * time.Millisecond}, nil, nil)
	tick := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc
}

func validInput() SubmitInput {
	return SubmitInput{
		UserID:  "user-1",
		Kind:    "lost",
		PetName: " Rex ",
		PetType: "Dog",
		Contact: Contact{Name: "Ana", Email: "ana@example.com", Location: "Central Park"},
		Images: []Image{
			{Filename: "rex.png", Data: []byte("png-bytes")},
			{Filename: "rex-2.jpg", ContentType: "image/jpeg", Data: []byte("jpg-bytes")},
		},
	}
}

// -------------------------
// Tests
// -------------------------

func TestSubmit_UploadsExtractsPersistsAndNotifiesHook(t *testing.T) {
	repo := newTestRepo()
	store := &fakeStore{}
	ex := &fakeExtractor{res: extraction.Result{Species: "Dog", Breed: "Labrador", PrimaryColor: "Brown", Marks: []string{" white paw ", ""}}}
	svc := newTestService(repo, store, ex)

	var hooked []Report
	svc.OnCreated(func(ctx context.Context, r Report) { hooked = append(hooked, r) })

	rep, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if rep.Kind != KindLost || rep.Status != StatusActive || rep.PetName != "Rex" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if len(store.keys) != 2 || store.keys[0] != "pet-reports/"+rep.ID+"/rex.png" {
		t.Fatalf("unexpected object keys: %v", store.keys)
	}
	if len(ex.mimes) != 1 || ex.mimes[0] != "image/png" {
		t.Fatalf("expected only the first image analyzed as image/png, got %v", ex.mimes)
	}
	if rep.Attributes.AgeGroup != Unknown || rep.Attributes.Size != Unknown {
		t.Fatalf("expected missing attrs to default to Unknown: %+v", rep.Attributes)
	}
	if len(rep.Attributes.Marks) != 1 || rep.Attributes.Marks[0] != "white paw" {
		t.Fatalf("unexpected marks: %v", rep.Attributes.Marks)
	}
	if _, err := repo.GetByID(context.Background(), rep.ID); err != nil {
		t.Fatalf("expected persisted report: %v", err)
	}
	if len(hooked) != 1 || hooked[0].ID != rep.ID {
		t.Fatalf("expected hook called once with the report")
	}
}

func TestSubmit_AutomatedOwnerSkipsHook(t *testing.T) {
	svc := newTestService(newTestRepo(), &fakeStore{}, &fakeExtractor{})

	called := false
	svc.OnCreated(func(ctx context.Context, r Report) { called = true })

	in := validInput()
	in.UserID = "scraper_bot"
	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if called {
		t.Fatalf("automated reports must not trigger match search")
	}
}

func TestImport_HookSurvivesCancelledRequest(t *testing.T) {
	svc := newTestService(newTestRepo(), &fakeStore{}, &fakeExtractor{})

	var hookErr error
	called := false
	svc.OnCreated(func(ctx context.Context, r Report) {
		called = true
		hookErr = ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Import(ctx, ImportInput{
		UserID:   "u1",
		Kind:     KindFound,
		PetType:  "Dog",
		ImageURL: "https://bucket.test/a.jpg",
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !called || hookErr != nil {
		t.Fatalf("expected hook with a live context, called=%v err=%v", called, hookErr)
	}
}

func TestSubmit_StorageFailureDoesNotPersist(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeStore{err: errors.New("access denied")}, &fakeExtractor{})

	_, err := svc.Submit(context.Background(), validInput())
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("report must not be persisted on storage failure")
	}
}

func TestSubmit_ExtractionTimeoutIsTyped(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeStore{}, &fakeExtractor{block: true})

	_, err := svc.Submit(context.Background(), validInput())
	if !errors.Is(err, apperr.ErrExtraction) || !apperr.IsTimeout(err) {
		t.Fatalf("expected extraction timeout, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("report must not be persisted on extraction failure")
	}
}

func TestSubmit_ExtractionFailureIsTyped(t *testing.T) {
	svc := newTestService(newTestRepo(), &fakeStore{}, &fakeExtractor{err: errors.New("502 from provider")})

	_, err := svc.Submit(context.Background(), validInput())
	if !errors.Is(err, apperr.ErrExtraction) || apperr.IsTimeout(err) {
		t.Fatalf("expected non-timeout extraction error, got %v", err)
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc := newTestService(newTestRepo(), &fakeStore{}, &fakeExtractor{})

	cases := map[string]func(*SubmitInput){
		"kind":     func(in *SubmitInput) { in.Kind = "stolen" },
		"pet type": func(in *SubmitInput) { in.PetType = " " },
		"email":    func(in *SubmitInput) { in.Contact.Email = "not-an-email" },
		"no files": func(in *SubmitInput) { in.Images = nil },
		"empty":    func(in *SubmitInput) { in.Images = []Image{{Filename: "a.jpg"}} },
	}

	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		if _, err := svc.Submit(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestMarkFound(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeStore{}, &fakeExtractor{})

	rep, err := svc.Submit(context.Background(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := svc.MarkFound(context.Background(), rep.ID); err != nil {
		t.Fatalf("mark found: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), rep.ID)
	if got.Status != StatusFound {
		t.Fatalf("expected found, got %s", got.Status)
	}
	if !got.UpdatedAt.After(rep.UpdatedAt) {
		t.Fatalf("expected updated_at refreshed")
	}

	// Reporte inexistente: no-op sin error.
	if err := svc.MarkFound(context.Background(), "missing"); err != nil {
		t.Fatalf("expected no error for missing report, got %v", err)
	}
}

func TestReopen(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeStore{}, &fakeExtractor{})

	rep, _ := svc.Submit(context.Background(), validInput())
	if changed, err := svc.Reopen(context.Background(), rep.ID); err != nil || changed {
		t.Fatalf("active report should stay as is: changed=%v err=%v", changed, err)
	}

	_ = svc.MarkFound(context.Background(), rep.ID)
	if changed, err := svc.Reopen(context.Background(), rep.ID); err != nil || !changed {
		t.Fatalf("expected reopen: changed=%v err=%v", changed, err)
	}
	got, _ := repo.GetByID(context.Background(), rep.ID)
	if got.Status != StatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}
}

func TestList_SearchAndCandidates(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, &fakeStore{}, &fakeExtractor{res: extraction.Result{Species: "Dog", Breed: "Beagle"}})

	lost, _ := svc.Submit(context.Background(), validInput())

	found := validInput()
	found.Kind = "Found"
	found.PetType = "dog"
	found.Description = "Seen near the LIBRARY"
	f, _ := svc.Submit(context.Background(), found)

	cat := validInput()
	cat.Kind = "Found"
	cat.PetType = "Cat"
	_, _ = svc.Submit(context.Background(), cat)

	items, err := svc.List(context.Background(), ListQuery{Search: "library"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != f.ID {
		t.Fatalf("expected search hit on description, got %d items", len(items))
	}

	items, _ = svc.List(context.Background(), ListQuery{Search: "beagle", Filter: ListFilter{Limit: 2}})
	if len(items) != 2 {
		t.Fatalf("expected limit applied after search, got %d", len(items))
	}

	cands, err := svc.ListCandidates(context.Background(), lost.Kind.Opposite(), lost.PetType)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(cands) != 1 || cands[0].ID != f.ID {
		t.Fatalf("expected only the same-type found report as candidate, got %d", len(cands))
	}
}

func TestGet_MalformedID(t *testing.T) {
	svc := newTestService(newTestRepo(), &fakeStore{}, &fakeExtractor{})
	if _, err := svc.Get(context.Background(), "not-a-uuid"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	a := Sanitize(extraction.Result{Species: "  ", Breed: "Pug"})
	if a.Species != Unknown || a.Breed != "Pug" || a.PrimaryColor != Unknown {
		t.Fatalf("unexpected attributes: %+v", a)
	}
	if a.Marks == nil || len(a.Marks) != 0 {
		t.Fatalf("expected empty non-nil marks")
	}
}

func TestMatchesSearch_Marks(t *testing.T) {
	r := Report{Attributes: Attributes{Marks: []string{"Scar on LEFT ear"}}}
	if !MatchesSearch(r, "left ear") {
		t.Fatalf("expected mark hit")
	}
	if MatchesSearch(r, strings.Repeat("x", 3)) {
		t.Fatalf("unexpected hit")
	}
}
