package reports

import (
	"context"
	"time"
)

// ListFilter: los campos vacíos no filtran. PetType compara sin mayúsculas.
type ListFilter struct {
	Kind    Kind
	Status  Status
	PetType string
	UserID  string
	Limit   int
}

// Repository persiste reportes. List devuelve del más nuevo al más viejo.
// GetByID y SetStatus devuelven apperr.NotFoundError si el id no existe.
type Repository interface {
	Create(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	SetStatus(ctx context.Context, id string, status Status, at time.Time) error
	List(ctx context.Context, f ListFilter) ([]Report, error)
}
