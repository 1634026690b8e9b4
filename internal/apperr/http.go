package apperr

import (
	"errors"
	"net/http"
)

// StatusCode traduce la taxonomía a códigos HTTP.
//   - Validation → 400
//   - NotFound → 404
//   - Conflict → 409
//   - Extraction → 502 (504 si fue timeout)
//   - Storage → 502
//   - resto → 500
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrExtraction), errors.Is(err, ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage evita filtrar detalles internos en los 500.
func PublicMessage(err error) string {
	if StatusCode(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
