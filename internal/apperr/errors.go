// Package apperr define la taxonomía de errores compartida por dominio, adapters y transporte.
// Cada tipo hace match con su sentinel vía errors.Is y expone el detalle vía errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError indica un input inválido (campo faltante, formato incorrecto, valor fuera de rango).
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	switch {
	case e.Field == "" && e.Reason == "":
		return "invalid input"
	case e.Field == "":
		return "invalid input: " + e.Reason
	case e.Reason == "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
}

func (e ValidationError) Is(target error) bool {
	switch target.(type) {
	case ValidationError, *ValidationError:
		return true
	}
	return false
}

// NotFoundError representa un recurso inexistente.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e NotFoundError) Is(target error) bool {
	switch target.(type) {
	case NotFoundError, *NotFoundError:
		return true
	}
	return false
}

// ConflictError indica una transición inválida desde el estado actual.
type ConflictError struct {
	Resource string
	ID       string
	Current  string
}

func (e ConflictError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("%s %s conflict", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s %s is already %s", e.Resource, e.ID, e.Current)
}

func (e ConflictError) Is(target error) bool {
	switch target.(type) {
	case ConflictError, *ConflictError:
		return true
	}
	return false
}

// ExtractionError envuelve fallas del extractor de atributos.
// Timeout distingue el vencimiento del plazo de un error del proveedor.
type ExtractionError struct {
	Timeout bool
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("attribute extraction timed out: %v", e.Err)
	}
	return fmt.Sprintf("attribute extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool {
	_, ok := target.(*ExtractionError)
	return ok
}

// StorageError envuelve fallas del object store (subida o lectura de imágenes).
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("image storage failed: %v", e.Err)
	}
	return fmt.Sprintf("image storage failed for %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	_, ok := target.(*StorageError)
	return ok
}

// MatchSearchError representa una falla del buscador de matches.
// Nunca llega al transporte: se loguea y la operación que lo disparó sigue.
type MatchSearchError struct {
	ReportID string
	Err      error
}

func (e *MatchSearchError) Error() string {
	return fmt.Sprintf("match search for report %s failed: %v", e.ReportID, e.Err)
}

func (e *MatchSearchError) Unwrap() error { return e.Err }

func (e *MatchSearchError) Is(target error) bool {
	_, ok := target.(*MatchSearchError)
	return ok
}

// NotificationError representa una falla al notificar un match.
type NotificationError struct {
	MatchID  string
	Notifier string
	Err      error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s for match %s failed: %v", e.Notifier, e.MatchID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

func (e *NotificationError) Is(target error) bool {
	_, ok := target.(*NotificationError)
	return ok
}

// Sentinels para errors.Is.
var (
	ErrValidation   = ValidationError{}
	ErrNotFound     = NotFoundError{}
	ErrConflict     = ConflictError{}
	ErrExtraction   = &ExtractionError{}
	ErrStorage      = &StorageError{}
	ErrMatchSearch  = &MatchSearchError{}
	ErrNotification = &NotificationError{}
)

// Invalid es un atajo para construir ValidationError.
func Invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

// NotFound es un atajo para construir NotFoundError.
func NotFound(resource, id string) error {
	return NotFoundError{Resource: resource, ID: id}
}

// IsTimeout informa si err es un ExtractionError por timeout.
func IsTimeout(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee) && ee.Timeout
}
