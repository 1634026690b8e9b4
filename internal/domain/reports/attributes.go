package reports

import (
	"strings"

	"pet-lost-found/internal/ports/extraction"
)

// Sanitize normaliza la salida del extractor: los campos vacíos pasan a Unknown
// y las marcas en blanco se descartan. Nunca devuelve Marks nil.
func Sanitize(res extraction.Result) Attributes {
	marks := make([]string, 0, len(res.Marks))
	for _, m := range res.Marks {
		if m = strings.TrimSpace(m); m != "" {
			marks = append(marks, m)
		}
	}

	return Attributes{
		Species:      orUnknown(res.Species),
		Breed:        orUnknown(res.Breed),
		PrimaryColor: orUnknown(res.PrimaryColor),
		AgeGroup:     orUnknown(res.AgeGroup),
		Size:         orUnknown(res.Size),
		Marks:        marks,
	}
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	return s
}

// MatchesSearch es la búsqueda lineal sin mayúsculas sobre nombre, raza,
// ubicación, descripción, especie y marcas.
func MatchesSearch(r Report, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}

	fields := []string{
		r.PetName,
		r.Attributes.Breed,
		r.Contact.Location,
		r.Description,
		r.Attributes.Species,
	}
	fields = append(fields, r.Attributes.Marks...)

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
