package maintenance

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/ports/extraction"
)

const (
	DefaultIngestPrefix = "scraped-images/"
	DefaultIngestLimit  = 10
	DefaultIngestUser   = "scraper_bot"
)

type IngestOptions struct {
	Prefix         string
	Limit          int
	UserID         string
	ExtractTimeout time.Duration
}

type IngestResult struct {
	Created   int
	Skipped   int
	Fallbacks int // extracción fallida, atributos por defecto
	Failed    int
}

// contactos de muestra que rotan entre los reportes ingeridos
var sampleContacts = []reports.Contact{
	{Name: "Community Helper", Email: "helper1@petfinder.com", Phone: "555-0101", Location: "Brooklyn, NY"},
	{Name: "Pet Rescuer", Email: "rescuer@petfinder.com", Phone: "555-0102", Location: "Manhattan, NY"},
	{Name: "Animal Lover", Email: "lover@petfinder.com", Phone: "555-0103", Location: "Queens, NY"},
	{Name: "Good Samaritan", Email: "samaritan@petfinder.com", Phone: "555-0104", Location: "Jersey City, NJ"},
	{Name: "Pet Finder", Email: "finder@petfinder.com", Phone: "555-0105", Location: "Hoboken, NJ"},
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// fallbackAttributes se usan cuando la extracción falla para una imagen ingerida.
var fallbackAttributes = extraction.Result{
	Species:      reports.Unknown,
	Breed:        "Mixed",
	PrimaryColor: reports.Unknown,
	AgeGroup:     "Adult",
	Size:         reports.Unknown,
}

// Ingest recorre imágenes bajo un prefijo del bucket y crea un reporte Found automatizado
// por cada una. Los reportes quedan a nombre de un usuario automatizado y no disparan matching.
func (r *Runner) Ingest(ctx context.Context, opts IngestOptions) (IngestResult, error) {
	var res IngestResult
	if r.bucket == nil || r.extractor == nil {
		return res, errors.New("ingest requires an object store and an extractor")
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultIngestPrefix
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultIngestLimit
	}
	if opts.UserID == "" {
		opts.UserID = DefaultIngestUser
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = reports.DefaultExtractionTimeout
	}

	objects, err := r.bucket.List(ctx, opts.Prefix, 0)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", opts.Prefix, err)
	}

	for _, obj := range objects {
		if res.Created >= opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		ext := strings.ToLower(path.Ext(obj.Key))
		if _, ok := imageExts[ext]; !ok {
			res.Skipped++
			continue
		}

		log := r.log.With(map[string]any{"key": obj.Key})

		data, contentType, err := r.bucket.Get(ctx, obj.Key)
		if err != nil {
			res.Failed++
			log.Warn("ingest download failed", map[string]any{"err": err})
			continue
		}
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = imageExts[ext]
		}

		attrs, fellBack := r.extractOrDefault(ctx, data, contentType, opts.ExtractTimeout)
		if fellBack {
			res.Fallbacks++
		}

		contact := sampleContacts[res.Created%len(sampleContacts)]
		_, err = r.reports.Import(ctx, reports.ImportInput{
			UserID:      opts.UserID,
			Kind:        reports.KindFound,
			PetType:     PetTypeFromSpecies(attrs.Species),
			Contact:     contact,
			ImageURL:    r.bucket.URL(obj.Key),
			Attributes:  attrs,
			Description: describe(attrs),
		})
		if err != nil {
			res.Failed++
			log.Error("ingest import failed", map[string]any{"err": err})
			continue
		}
		res.Created++
	}

	r.log.Info("ingest done", map[string]any{
		"prefix":    opts.Prefix,
		"created":   res.Created,
		"skipped":   res.Skipped,
		"fallbacks": res.Fallbacks,
		"failed":    res.Failed,
	})
	return res, nil
}

func (r *Runner) extractOrDefault(ctx context.Context, data []byte, contentType string, timeout time.Duration) (extraction.Result, bool) {
	ectx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attrs, err := r.extractor.Extract(ectx, data, contentType)
	if err != nil {
		r.log.Warn("ingest extraction failed, using defaults", map[string]any{"err": err})
		return fallbackAttributes, true
	}
	return attrs, false
}

// PetTypeFromSpecies mapea la especie detectada a la categoría del reporte.
func PetTypeFromSpecies(species string) string {
	switch strings.ToLower(strings.TrimSpace(species)) {
	case "dog", "puppy":
		return "Dog"
	case "cat", "kitten":
		return "Cat"
	default:
		return "Other"
	}
}

func describe(a extraction.Result) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Breed, a.PrimaryColor, a.Species} {
		if p = strings.TrimSpace(p); p != "" && p != reports.Unknown {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Found pet"
	}
	return "Found pet - " + strings.Join(parts, " ")
}
