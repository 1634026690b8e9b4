package matching

import (
	"testing"

	"pet-lost-found/internal/domain/reports"
)

func TestScore_ReflexiveAndSymmetric(t *testing.T) {
	sets := []reports.Attributes{
		{Species: "Dog", Breed: "Labrador", PrimaryColor: "Brown"},
		{Species: "Cat", Breed: "Siamese", PrimaryColor: "Cream", Marks: []string{"blue eyes"}},
		{Species: "Dog", Breed: "Labrador", PrimaryColor: "Black"},
		{},
	}

	for i, a := range sets {
		if s, fields := Score(a, a); s != MaxScore || len(fields) != MaxScore {
			t.Fatalf("set %d: expected reflexive max, got %d %v", i, s, fields)
		}
		for j, b := range sets {
			ab, _ := Score(a, b)
			ba, _ := Score(b, a)
			if ab != ba {
				t.Fatalf("score(%d,%d)=%d but score(%d,%d)=%d", i, j, ab, j, i, ba)
			}
		}
	}
}

func TestScore_CaseAndWhitespaceInvariant(t *testing.T) {
	s, fields := Score(
		reports.Attributes{Species: " Dog ", Breed: "LABRADOR", PrimaryColor: "brown\t"},
		reports.Attributes{Species: "dog", Breed: "Labrador", PrimaryColor: "Brown"},
	)
	if s != 3 {
		t.Fatalf("expected 3, got %d", s)
	}
	want := []string{FieldSpecies, FieldBreed, FieldPrimaryColor}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("expected fields %v, got %v", want, fields)
		}
	}
}

func TestScore_PartialAndMarksIgnored(t *testing.T) {
	s, fields := Score(
		reports.Attributes{Species: "Dog", Breed: "Labrador", PrimaryColor: "Brown", Size: "Large", Marks: []string{"collar"}},
		reports.Attributes{Species: "Dog", Breed: "Labrador", PrimaryColor: "Black", Size: "Small", Marks: []string{"collar"}},
	)
	if s != 2 || len(fields) != 2 {
		t.Fatalf("expected 2 agreeing fields, got %d %v", s, fields)
	}
	for _, f := range fields {
		if f == FieldPrimaryColor {
			t.Fatalf("primary_color must not be reported as matched")
		}
	}
}
