// Package gemini implementa extraction.Extractor sobre la API generateContent de Gemini.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/platform/httpclient"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/ports/extraction"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	apiKeyHeader      = "x-goog-api-key"
	preferredModelKey = "preferred-model"
)

// DefaultModels se prueban en orden hasta que uno responda.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

const prompt = `Analyze this pet image carefully. Return ONLY valid JSON (no markdown, no code blocks, no explanations) with this exact structure:
{
    "species": "Dog or Cat or Bird, etc.",
    "breed": "Specific breed if identifiable, otherwise 'Mixed' or 'Unknown'",
    "primary_color": "Main color (e.g., 'Golden', 'Black', 'White', 'Brown', 'Orange', 'Ginger')",
    "age_group": "Puppy/Kitten, Young, Adult, or Senior",
    "marks": ["distinguishing marks like 'Spotted', 'Striped', 'Floppy ears', 'Short tail', etc."],
    "size": "Small, Medium, or Large"
}

Important: Look at the image carefully. If it's a cat, return "Cat" for species. If it's a dog, return "Dog". Be accurate.`

type Config struct {
	APIKey  string
	BaseURL string
	Models  []string
	Timeout time.Duration
}

type Extractor struct {
	client *httpclient.Client
	apiKey string
	models []string
	// recuerda el último modelo que respondió para no pagar los fallos de la lista en cada request
	preferred *cache.Cache
	log       logger.Logger
}

func New(cfg Config, log logger.Logger) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg, log), nil
}

// NewWithClient usa un client ya armado; client.BaseURL debe apuntar a la raíz de la API.
func NewWithClient(client *httpclient.Client, cfg Config, log logger.Logger) *Extractor {
	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		models = append(models, DefaultModels...)
	}
	return &Extractor{
		client:    client,
		apiKey:    cfg.APIKey,
		models:    models,
		preferred: cache.New(30*time.Minute, time.Hour),
		log:       logger.OrNop(log),
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if t := strings.TrimSpace(p.Text); t != "" {
			return t
		}
	}
	return ""
}

func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (extraction.Result, error) {
	if len(image) == 0 {
		return extraction.Result{}, &apperr.ExtractionError{Err: errors.New("empty image")}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	req := generateRequest{Contents: []content{{Parts: []part{
		{Text: prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}}}}
	headers := map[string]string{apiKeyHeader: e.apiKey}

	var lastErr error
	for _, model := range e.modelOrder() {
		var resp generateResponse
		err := e.client.DoJSON(ctx, http.MethodPost, "/models/"+model+":generateContent", headers, req, &resp)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return extraction.Result{}, &apperr.ExtractionError{
				Timeout: errors.Is(ctxErr, context.DeadlineExceeded),
				Err:     ctxErr,
			}
		}
		if err != nil {
			e.log.Warn("gemini model failed", map[string]any{"model": model, "status": httpclient.StatusOf(err), "error": err})
			lastErr = err
			continue
		}

		text := resp.text()
		if text == "" {
			e.log.Warn("gemini model returned no text", map[string]any{"model": model})
			lastErr = fmt.Errorf("model %s: empty response", model)
			continue
		}

		e.preferred.SetDefault(preferredModelKey, model)
		res, err := Parse(text)
		if err != nil {
			return extraction.Result{}, &apperr.ExtractionError{Err: err}
		}
		e.log.Debug("gemini extraction ok", map[string]any{"model": model, "species": res.Species, "breed": res.Breed})
		return res, nil
	}

	return extraction.Result{}, &apperr.ExtractionError{Err: fmt.Errorf("all models failed: %w", lastErr)}
}

// modelOrder pone primero el último modelo exitoso.
func (e *Extractor) modelOrder() []string {
	v, ok := e.preferred.Get(preferredModelKey)
	if !ok {
		return e.models
	}
	first, _ := v.(string)
	out := make([]string, 0, len(e.models))
	out = append(out, first)
	for _, m := range e.models {
		if m != first {
			out = append(out, m)
		}
	}
	return out
}
