// Package static devuelve atributos fijos; sirve para correr la API sin un proveedor de visión.
package static

import (
	"context"
	"errors"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/ports/extraction"
)

type Extractor struct {
	result extraction.Result
}

// New devuelve siempre result para cualquier imagen no vacía.
func New(result extraction.Result) *Extractor {
	return &Extractor{result: result}
}

// Default es el extractor del modo dev (EXTRACTOR=static).
func Default() *Extractor {
	return New(extraction.Result{
		Species:      "Dog",
		Breed:        "Mixed",
		PrimaryColor: "Brown",
		AgeGroup:     "Adult",
		Size:         "Medium",
	})
}

func (e *Extractor) Extract(ctx context.Context, image []byte, _ string) (extraction.Result, error) {
	if err := ctx.Err(); err != nil {
		return extraction.Result{}, &apperr.ExtractionError{Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	if len(image) == 0 {
		return extraction.Result{}, &apperr.ExtractionError{Err: errors.New("empty image")}
	}
	out := e.result
	out.Marks = append([]string(nil), e.result.Marks...)
	return out, nil
}
