package reports

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"path"
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"
	"pet-lost-found/internal/ports/extraction"
	"pet-lost-found/internal/ports/objectstore"

	"github.com/google/uuid"
)

const (
	DefaultExtractionTimeout = 30 * time.Second
	DefaultKeyPrefix         = "pet-reports"
	DefaultContentType       = "image/jpeg"
)

// DefaultAutomatedUserIDs son los dueños de reportes de ingesta masiva.
var DefaultAutomatedUserIDs = []string{"scraper_bot"}

// CreatedHook se invoca después de persistir un reporte de un usuario real.
// No devuelve error: lo que pase después de persistir no puede deshacer el alta.
type CreatedHook func(ctx context.Context, r Report)

type Config struct {
	ExtractionTimeout time.Duration
	AutomatedUserIDs  []string
	KeyPrefix         string
}

type Service struct {
	repo      Repository
	store     objectstore.Store
	extractor extraction.Extractor
	log       logger.Logger
	metrics   *metrics.Metrics

	onCreated      CreatedHook
	automated      map[string]struct{}
	extractTimeout time.Duration
	keyPrefix      string

	now   func() time.Time
	newID func() string
}

func NewService(
	repo Repository,
	store objectstore.Store,
	extractor extraction.Extractor,
	cfg Config,
	log logger.Logger,
	m *metrics.Metrics,
) *Service {
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = DefaultExtractionTimeout
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.AutomatedUserIDs == nil {
		cfg.AutomatedUserIDs = DefaultAutomatedUserIDs
	}

	automated := make(map[string]struct{}, len(cfg.AutomatedUserIDs))
	for _, id := range cfg.AutomatedUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			automated[id] = struct{}{}
		}
	}

	return &Service{
		repo:           repo,
		store:          store,
		extractor:      extractor,
		log:            logger.OrNop(log).With(map[string]any{"component": "reports"}),
		metrics:        m,
		automated:      automated,
		extractTimeout: cfg.ExtractionTimeout,
		keyPrefix:      strings.Trim(cfg.KeyPrefix, "/"),
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// OnCreated registra el hook de post-alta (el buscador de matches).
func (s *Service) OnCreated(h CreatedHook) {
	s.onCreated = h
}

// IsAutomated informa si el reporte viene de una ingesta automatizada.
func (s *Service) IsAutomated(r Report) bool {
	_, ok := s.automated[strings.TrimSpace(r.UserID)]
	return ok
}

// AutomatedUserIDs devuelve los ids configurados como automatizados.
func (s *Service) AutomatedUserIDs() []string {
	out := make([]string, 0, len(s.automated))
	for id := range s.automated {
		out = append(out, id)
	}
	return out
}

type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type SubmitInput struct {
	UserID      string
	Kind        string
	PetName     string
	PetType     string
	Description string
	Contact     Contact
	Images      []Image
}

// Submit ejecuta el pipeline de alta: validar, subir imágenes, extraer atributos de la
// primera imagen, persistir y disparar el hook. Si falla algo antes de persistir,
// el reporte no se guarda.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Report, error) {
	kind, err := ParseKind(in.Kind)
	if err != nil {
		return Report{}, err
	}
	if err := validateSubmit(in); err != nil {
		return Report{}, err
	}

	id := s.newID()

	urls := make([]string, 0, len(in.Images))
	for i, img := range in.Images {
		key := s.objectKey(id, img.Filename, i)
		url, err := s.store.Put(ctx, key, img.Data, contentTypeOf(img))
		if err != nil {
			return Report{}, &apperr.StorageError{Key: key, Err: err}
		}
		urls = append(urls, url)
	}

	first := in.Images[0]
	res, err := s.extract(ctx, first.Data, contentTypeOf(first))
	if err != nil {
		return Report{}, err
	}

	now := s.now()
	r := Report{
		ID:          id,
		UserID:      strings.TrimSpace(in.UserID),
		Kind:        kind,
		PetName:     strings.TrimSpace(in.PetName),
		PetType:     strings.TrimSpace(in.PetType),
		Contact:     trimContact(in.Contact),
		ImageURLs:   urls,
		Attributes:  Sanitize(res),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.persist(ctx, r)
}

type ImportInput struct {
	UserID      string
	Kind        Kind
	PetName     string
	PetType     string
	Description string
	Contact     Contact
	ImageURL    string
	Attributes  extraction.Result
}

// Import persiste un reporte cuyas imágenes ya están en el object store
// (ingesta desde un bucket). No sube ni extrae.
func (s *Service) Import(ctx context.Context, in ImportInput) (Report, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Report{}, apperr.Invalid("user_id", "required")
	}
	if in.Kind != KindLost && in.Kind != KindFound {
		return Report{}, apperr.Invalid("report_type", "must be Lost or Found")
	}
	if strings.TrimSpace(in.PetType) == "" {
		return Report{}, apperr.Invalid("pet_type", "required")
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return Report{}, apperr.Invalid("image_url", "required")
	}

	now := s.now()
	r := Report{
		ID:          s.newID(),
		UserID:      strings.TrimSpace(in.UserID),
		Kind:        in.Kind,
		PetName:     strings.TrimSpace(in.PetName),
		PetType:     strings.TrimSpace(in.PetType),
		Contact:     trimContact(in.Contact),
		ImageURLs:   []string{strings.TrimSpace(in.ImageURL)},
		Attributes:  Sanitize(in.Attributes),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.persist(ctx, r)
}

func (s *Service) persist(ctx context.Context, r Report) (Report, error) {
	if err := s.repo.Create(ctx, r); err != nil {
		return Report{}, fmt.Errorf("create report: %w", err)
	}
	s.metrics.ReportSubmitted(string(r.Kind))

	log := s.log.With(map[string]any{"report_id": r.ID, "kind": string(r.Kind), "pet_type": r.PetType})
	log.Info("report created", nil)

	// Los reportes automatizados nunca disparan la búsqueda de matches.
	if s.IsAutomated(r) {
		log.Debug("automated report, skipping match search", map[string]any{"user_id": r.UserID})
		return r, nil
	}
	// El reporte ya está persistido: el matching no se corta si el cliente se va.
	if s.onCreated != nil {
		s.onCreated(context.WithoutCancel(ctx), r)
	}
	return r, nil
}

// extract aplica el timeout acotado y tipa la falla como ExtractionError.
func (s *Service) extract(ctx context.Context, data []byte, mimeType string) (extraction.Result, error) {
	ectx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	start := s.now()
	res, err := s.extractor.Extract(ectx, data, mimeType)
	s.metrics.ObserveExtraction(s.now().Sub(start).Seconds())
	if err == nil {
		return res, nil
	}

	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(ectx.Err(), context.DeadlineExceeded)

	var ee *apperr.ExtractionError
	if errors.As(err, &ee) {
		if timedOut && !ee.Timeout {
			return extraction.Result{}, &apperr.ExtractionError{Timeout: true, Err: ee.Err}
		}
		return extraction.Result{}, ee
	}
	return extraction.Result{}, &apperr.ExtractionError{Timeout: timedOut, Err: err}
}

func (s *Service) Get(ctx context.Context, id string) (Report, error) {
	if err := ValidateID(id); err != nil {
		return Report{}, err
	}
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

type ListQuery struct {
	Filter ListFilter
	// Search es texto libre; filtra en memoria sobre lo ya traído del repo.
	Search string
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Report, error) {
	search := strings.TrimSpace(q.Search)
	if search == "" {
		return s.repo.List(ctx, q.Filter)
	}

	f := q.Filter
	limit := f.Limit
	f.Limit = 0

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]Report, 0, len(items))
	for _, r := range items {
		if !MatchesSearch(r, search) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListCandidates devuelve el pool de candidatos: tipo dado, activos, misma categoría.
func (s *Service) ListCandidates(ctx context.Context, kind Kind, petType string) ([]Report, error) {
	return s.repo.List(ctx, ListFilter{
		Kind:    kind,
		Status:  StatusActive,
		PetType: petType,
	})
}

// ValidateID exige formato UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return apperr.Invalid("report_id", "must be a UUID")
	}
	return nil
}

func validateSubmit(in SubmitInput) error {
	if strings.TrimSpace(in.UserID) == "" {
		return apperr.Invalid("user_id", "required")
	}
	if strings.TrimSpace(in.PetType) == "" {
		return apperr.Invalid("pet_type", "required")
	}
	if strings.TrimSpace(in.Contact.Name) == "" {
		return apperr.Invalid("user_name", "required")
	}
	if strings.TrimSpace(in.Contact.Email) == "" {
		return apperr.Invalid("user_email", "required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Contact.Email)); err != nil {
		return apperr.Invalid("user_email", "malformed address")
	}
	if len(in.Images) == 0 {
		return apperr.Invalid("files", "at least one image is required")
	}
	for _, img := range in.Images {
		if len(img.Data) == 0 {
			return apperr.Invalid("files", "empty image")
		}
	}
	return nil
}

func trimContact(c Contact) Contact {
	return Contact{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Location: strings.TrimSpace(c.Location),
	}
}

// objectKey arma pet-reports/<report-id>/<filename>.
func (s *Service) objectKey(reportID, filename string, idx int) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("image-%d", idx+1)
	}
	return s.keyPrefix + "/" + reportID + "/" + name
}

func contentTypeOf(img Image) string {
	if ct := strings.TrimSpace(img.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(img.Filename))); ct != "" {
		return ct
	}
	return DefaultContentType
}
