package reports

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/middleware"
	"pet-lost-found/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// MatchedLookup indica qué reportes tienen un match aceptado.
// Interfaz chica para no importar el paquete matching (ciclo).
type MatchedLookup interface {
	MatchedReportIDs(ctx context.Context, reportIDs []string) (map[string]bool, error)
}

const DefaultMaxUploadBytes = 32 << 20

type HandlerOptions struct {
	Matched        MatchedLookup // puede ser nil: is_matched queda en false
	MaxUploadBytes int64
	Log            logger.Logger
}

func RegisterRoutes(r chi.Router, svc *Service, opts HandlerOptions) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	log := logger.OrNop(opts.Log).With(map[string]any{"component": "reports_http"})

	r.Route("/api/reports", func(rr chi.Router) {
		rr.Post("/", submitReportHandler(svc, opts))
		rr.Get("/", listReportsHandler(svc, opts.Matched, log))
		rr.Get("/{reportID}", getReportHandler(svc, opts.Matched, log))
	})
}

// attributesResponse son los atributos detectados en la primera imagen.
type attributesResponse struct {
	Species      string   `json:"species"`
	Breed        string   `json:"breed"`
	PrimaryColor string   `json:"primary_color"`
	AgeGroup     string   `json:"age_group"`
	Size         string   `json:"size"`
	Marks        []string `json:"marks"`
}

// Response representa un reporte devuelto por la API. Exportado para los matches embebidos.
type Response struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	ReportType   Kind               `json:"report_type" enums:"Lost,Found"`
	PetName      string             `json:"pet_name"`
	PetType      string             `json:"pet_type"`
	UserName     string             `json:"user_name"`
	UserEmail    string             `json:"user_email"`
	UserPhone    string             `json:"user_phone"`
	UserLocation string             `json:"user_location"`
	ImageURL     string             `json:"image_url"`
	ImageURLs    []string           `json:"image_urls"`
	Attributes   attributesResponse `json:"attributes"`
	Description  string             `json:"description"`
	Status       Status             `json:"status" enums:"active,found,closed"`
	IsMatched    bool               `json:"is_matched"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// submitReportHandler godoc
// @Summary Crear reporte de mascota perdida o encontrada
// @Description Sube las imágenes, analiza la primera y guarda el reporte. Después busca matches contra el tipo opuesto; esa búsqueda nunca hace fallar el alta.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param X-User-ID header string false "ID del usuario que reporta (default anonymous)"
// @Param files formData file true "Imágenes (una o más)"
// @Param report_type formData string true "Lost o Found"
// @Param pet_type formData string true "Categoría (Dog, Cat, ...)"
// @Param pet_name formData string false "Nombre de la mascota"
// @Param user_name formData string true "Nombre de contacto"
// @Param user_email formData string true "Email de contacto"
// @Param user_phone formData string false "Teléfono de contacto"
// @Param user_location formData string false "Ubicación"
// @Param description formData string false "Descripción libre"
// @Success 201 {object} reports.Response
// @Failure 400 {string} string "validación"
// @Failure 502 {string} string "falla de extracción o de storage"
// @Failure 504 {string} string "timeout de extracción"
// @Router /api/reports [post]
func submitReportHandler(svc *Service, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxUploadBytes)
		if err := r.ParseMultipartForm(opts.MaxUploadBytes); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		images, err := readImages(r.MultipartForm, opts.MaxUploadBytes)
		if err != nil {
			http.Error(w, "could not read uploaded files", http.StatusBadRequest)
			return
		}

		rep, err := svc.Submit(r.Context(), SubmitInput{
			UserID:      middleware.Actor(r.Context()),
			Kind:        r.FormValue("report_type"),
			PetName:     r.FormValue("pet_name"),
			PetType:     r.FormValue("pet_type"),
			Description: r.FormValue("description"),
			Contact: Contact{
				Name:     r.FormValue("user_name"),
				Email:    r.FormValue("user_email"),
				Phone:    r.FormValue("user_phone"),
				Location: r.FormValue("user_location"),
			},
			Images: images,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(rep, false))
	}
}

// listReportsHandler godoc
// @Summary Listar reportes
// @Description Devuelve reportes del más nuevo al más viejo. `q` hace una búsqueda sin mayúsculas sobre nombre, raza, ubicación, descripción, especie y marcas.
// @Tags reports
// @Produce json
// @Param report_type query string false "Lost o Found"
// @Param pet_type query string false "Categoría (sin mayúsculas)"
// @Param status query string false "active, found o closed"
// @Param q query string false "Texto libre"
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} reports.Response
// @Failure 400 {string} string "filtro inválido"
// @Router /api/reports [get]
func listReportsHandler(svc *Service, matched MatchedLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f ListFilter
		if v := strings.TrimSpace(q.Get("report_type")); v != "" {
			k, err := ParseKind(v)
			if err != nil {
				writeError(w, err)
				return
			}
			f.Kind = k
		}
		if v := strings.TrimSpace(q.Get("status")); v != "" {
			st, err := ParseStatus(v)
			if err != nil {
				writeError(w, err)
				return
			}
			f.Status = st
		}
		f.PetType = strings.TrimSpace(q.Get("pet_type"))
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			f.Limit = n
		}

		items, err := svc.List(r.Context(), ListQuery{Filter: f, Search: q.Get("q")})
		if err != nil {
			writeError(w, err)
			return
		}

		flags := matchedFlags(r.Context(), matched, items, log)

		out := make([]Response, 0, len(items))
		for _, rep := range items {
			out = append(out, ToResponse(rep, flags[rep.ID]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getReportHandler godoc
// @Summary Obtener un reporte
// @Tags reports
// @Produce json
// @Param reportID path string true "ID del reporte (UUID)"
// @Success 200 {object} reports.Response
// @Failure 400 {string} string "id inválido"
// @Failure 404 {string} string "report not found"
// @Router /api/reports/{reportID} [get]
func getReportHandler(svc *Service, matched MatchedLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.Get(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			writeError(w, err)
			return
		}

		flags := matchedFlags(r.Context(), matched, []Report{rep}, log)
		writeJSON(w, http.StatusOK, ToResponse(rep, flags[rep.ID]))
	}
}

// matchedFlags degrada a "sin match" si el lookup falla: es un dato de presentación.
func matchedFlags(ctx context.Context, matched MatchedLookup, items []Report, log logger.Logger) map[string]bool {
	if matched == nil || len(items) == 0 {
		return map[string]bool{}
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	flags, err := matched.MatchedReportIDs(ctx, ids)
	if err != nil {
		log.Warn("is_matched lookup failed", map[string]any{"reports": len(ids), "err": err.Error()})
		return map[string]bool{}
	}
	return flags
}

func readImages(form *multipart.Form, maxBytes int64) ([]Image, error) {
	var headers []*multipart.FileHeader
	for _, field := range []string{"files", "files[]", "file"} {
		headers = append(headers, form.File[field]...)
	}

	out := make([]Image, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, maxBytes))
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, Image{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return out, nil
}

func ToResponse(r Report, matched bool) Response {
	marks := r.Attributes.Marks
	if marks == nil {
		marks = []string{}
	}
	urls := r.ImageURLs
	if urls == nil {
		urls = []string{}
	}

	return Response{
		ID:           r.ID,
		UserID:       r.UserID,
		ReportType:   r.Kind,
		PetName:      r.PetName,
		PetType:      r.PetType,
		UserName:     r.Contact.Name,
		UserEmail:    r.Contact.Email,
		UserPhone:    r.Contact.Phone,
		UserLocation: r.Contact.Location,
		ImageURL:     r.PrimaryImageURL(),
		ImageURLs:    urls,
		Attributes: attributesResponse{
			Species:      r.Attributes.Species,
			Breed:        r.Attributes.Breed,
			PrimaryColor: r.Attributes.PrimaryColor,
			AgeGroup:     r.Attributes.AgeGroup,
			Size:         r.Attributes.Size,
			Marks:        marks,
		},
		Description: r.Description,
		Status:      r.Status,
		IsMatched:   matched,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, apperr.PublicMessage(err), apperr.StatusCode(err))
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
