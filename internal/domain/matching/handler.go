package matching

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// ReportReader resuelve las referencias (soft) de un match.
type ReportReader interface {
	Get(ctx context.Context, id string) (reports.Report, error)
}

func RegisterRoutes(r chi.Router, svc *Service, reportsSvc ReportReader) {
	r.Route("/api/matches", func(mr chi.Router) {
		mr.Get("/", listMatchesHandler(svc, reportsSvc))
		mr.Get("/{matchID}", getMatchHandler(svc, reportsSvc))

		// Decisión del usuario (exactamente una vez por match)
		mr.Post("/{matchID}/decision", decideMatchHandler(svc))
	})
}

// decisionRequest es el cuerpo opcional de la decisión; el query param tiene prioridad.
type decisionRequest struct {
	Decision Decision `json:"decision" enums:"accept,reject"`
}

// matchResponse representa un match devuelto por la API, con sus reportes embebidos.
type matchResponse struct {
	ID            string            `json:"id"`
	LostReportID  string            `json:"lost_report_id"`
	FoundReportID string            `json:"found_report_id"`
	Score         int               `json:"score"`
	MaxScore      int               `json:"max_score"`
	MatchedFields []string          `json:"matched_fields"`
	Status        Status            `json:"status" enums:"pending,accepted,rejected"`
	DecidedBy     string            `json:"decided_by,omitempty"`
	DecidedAt     *time.Time        `json:"decided_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	LostReport    *reports.Response `json:"lost_report,omitempty"`
	FoundReport   *reports.Response `json:"found_report,omitempty"`
}

// listMatchesHandler godoc
// @Summary Listar matches
// @Description Devuelve matches del más nuevo al más viejo con ambos reportes embebidos. Los matches con una referencia colgante se omiten.
// @Tags matches
// @Produce json
// @Param report_id query string false "Filtra por reporte (lado lost o found)"
// @Param status query string false "pending, accepted o rejected"
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} matchResponse
// @Failure 400 {string} string "filtro inválido"
// @Router /api/matches [get]
func listMatchesHandler(svc *Service, reportsSvc ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f ListFilter
		f.ReportID = strings.TrimSpace(q.Get("report_id"))
		if v := strings.TrimSpace(q.Get("status")); v != "" {
			st, err := ParseStatus(v)
			if err != nil {
				writeError(w, err)
				return
			}
			f.Status = st
		}
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			f.Limit = n
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]matchResponse, 0, len(items))
		for _, m := range items {
			resp, err := withReports(r.Context(), reportsSvc, m)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrValidation) {
					continue
				}
				writeError(w, err)
				return
			}
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMatchHandler godoc
// @Summary Obtener un match
// @Tags matches
// @Produce json
// @Param matchID path string true "ID del match (UUID)"
// @Success 200 {object} matchResponse
// @Failure 400 {string} string "id inválido"
// @Failure 404 {string} string "match o reporte no encontrado"
// @Router /api/matches/{matchID} [get]
func getMatchHandler(svc *Service, reportsSvc ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.Get(r.Context(), chi.URLParam(r, "matchID"))
		if err != nil {
			writeError(w, err)
			return
		}

		resp, err := withReports(r.Context(), reportsSvc, m)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// decideMatchHandler godoc
// @Summary Aceptar o rechazar un match
// @Description Aplica la decisión una sola vez. Un match que ya no está pending devuelve 409 con el estado actual. Aceptar marca el reporte Lost como found.
// @Tags matches
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Usuario que decide (default anonymous)"
// @Param matchID path string true "ID del match (UUID)"
// @Param decision query string false "accept o reject"
// @Param payload body decisionRequest false "Alternativa al query param"
// @Success 200 {object} matchResponse
// @Failure 400 {string} string "decisión o id inválido"
// @Failure 404 {string} string "match not found"
// @Failure 409 {string} string "match ya decidido"
// @Router /api/matches/{matchID}/decision [post]
func decideMatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("decision")
		if strings.TrimSpace(raw) == "" && r.Body != nil {
			var req decisionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			raw = string(req.Decision)
		}

		d, err := ParseDecision(raw)
		if err != nil {
			writeError(w, err)
			return
		}

		m, err := svc.Decide(r.Context(), chi.URLParam(r, "matchID"), d, middleware.Actor(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMatchResponse(m))
	}
}

// withReports embebe ambos reportes. Una referencia colgante se informa como not found.
func withReports(ctx context.Context, reportsSvc ReportReader, m Match) (matchResponse, error) {
	resp := toMatchResponse(m)
	if reportsSvc == nil {
		return resp, nil
	}

	lost, err := reportsSvc.Get(ctx, m.LostReportID)
	if err != nil {
		return matchResponse{}, err
	}
	found, err := reportsSvc.Get(ctx, m.FoundReportID)
	if err != nil {
		return matchResponse{}, err
	}

	lr := reports.ToResponse(lost, m.Status == StatusAccepted)
	fr := reports.ToResponse(found, m.Status == StatusAccepted)
	resp.LostReport = &lr
	resp.FoundReport = &fr
	return resp, nil
}

func toMatchResponse(m Match) matchResponse {
	fields := m.MatchedFields
	if fields == nil {
		fields = []string{}
	}
	return matchResponse{
		ID:            m.ID,
		LostReportID:  m.LostReportID,
		FoundReportID: m.FoundReportID,
		Score:         m.Score,
		MaxScore:      MaxScore,
		MatchedFields: fields,
		Status:        m.Status,
		DecidedBy:     m.DecidedBy,
		DecidedAt:     m.DecidedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
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
