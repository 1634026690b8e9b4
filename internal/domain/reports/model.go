package reports

import (
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
)

// Kind distingue reportes de mascota perdida y encontrada.
type Kind string

const (
	KindLost  Kind = "Lost"
	KindFound Kind = "Found"
)

// ParseKind acepta "lost"/"found" sin importar mayúsculas.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lost":
		return KindLost, nil
	case "found":
		return KindFound, nil
	default:
		return "", apperr.Invalid("report_type", "must be Lost or Found")
	}
}

// Opposite devuelve el tipo contra el que se buscan candidatos.
func (k Kind) Opposite() Kind {
	if k == KindLost {
		return KindFound
	}
	return KindLost
}

type Status string

const (
	StatusActive Status = "active"
	StatusFound  Status = "found"
	StatusClosed Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusFound:
		return StatusFound, nil
	case StatusClosed:
		return StatusClosed, nil
	default:
		return "", apperr.Invalid("status", "must be active, found or closed")
	}
}

// Unknown es el valor por defecto de un atributo que el extractor no supo determinar.
const Unknown = "Unknown"

// Contact son los datos de contacto del dueño del reporte.
type Contact struct {
	Name     string
	Email    string
	Phone    string
	Location string
}

// Attributes describe la apariencia de la mascota.
// Solo species, breed y primary color participan del matching; el resto es informativo.
type Attributes struct {
	Species      string
	Breed        string
	PrimaryColor string
	AgeGroup     string
	Size         string
	Marks        []string
}

type Report struct {
	ID          string
	UserID      string
	Kind        Kind
	PetName     string
	PetType     string
	Contact     Contact
	ImageURLs   []string
	Attributes  Attributes
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PrimaryImageURL devuelve la primera imagen (la que se analizó), si existe.
func (r Report) PrimaryImageURL() string {
	if len(r.ImageURLs) == 0 {
		return ""
	}
	return r.ImageURLs[0]
}

// PetTypeKey normaliza la categoría para comparar y filtrar (Unicode, sin espacios).
// Los drivers SQL la guardan en pet_type_key.
func PetTypeKey(petType string) string {
	return strings.ToLower(strings.TrimSpace(petType))
}

// SamePetType compara la categoría de mascota sin importar mayúsculas ni espacios.
func SamePetType(a, b string) bool {
	return PetTypeKey(a) == PetTypeKey(b)
}
