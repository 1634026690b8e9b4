package matching

import (
	"strings"

	"pet-lost-found/internal/domain/reports"
)

const (
	FieldSpecies      = "species"
	FieldBreed        = "breed"
	FieldPrimaryColor = "primary_color"
)

// MaxScore es la cantidad de campos comparables. Solo un score igual a MaxScore genera match.
const MaxScore = 3

// Score compara species, breed y primary color sin mayúsculas y sin espacios
// en los extremos. Edad, tamaño y marcas no puntúan.
func Score(a, b reports.Attributes) (int, []string) {
	pairs := [MaxScore]struct {
		field string
		a, b  string
	}{
		{FieldSpecies, a.Species, b.Species},
		{FieldBreed, a.Breed, b.Breed},
		{FieldPrimaryColor, a.PrimaryColor, b.PrimaryColor},
	}

	score := 0
	matched := make([]string, 0, MaxScore)
	for _, p := range pairs {
		if normalize(p.a) == normalize(p.b) {
			score++
			matched = append(matched, p.field)
		}
	}
	return score, matched
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
