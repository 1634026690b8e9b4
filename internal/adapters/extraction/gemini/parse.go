package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"pet-lost-found/internal/ports/extraction"
)

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")

	speciesRe = regexp.MustCompile(`(?i)"species"\s*:\s*"([^"]+)"`)
	breedRe   = regexp.MustCompile(`(?i)"breed"\s*:\s*"([^"]+)"`)
	colorRe   = regexp.MustCompile(`(?i)"primary_color"\s*:\s*"([^"]+)"`)
)

type rawResult struct {
	Species      any `json:"species"`
	Breed        any `json:"breed"`
	PrimaryColor any `json:"primary_color"`
	AgeGroup     any `json:"age_group"`
	Size         any `json:"size"`
	Marks        any `json:"marks"`
}

// Parse interpreta la respuesta del modelo de forma tolerante: quita fences de markdown,
// toma el primer objeto JSON balanceado y, si no decodifica, recupera species/breed/primary_color por regex.
func Parse(text string) (extraction.Result, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = fenceOpen.ReplaceAllString(text, "")
		text = fenceClose.ReplaceAllString(text, "")
	}

	obj, ok := firstObject(text)
	if !ok {
		return extraction.Result{}, fmt.Errorf("no json object in model response: %s", preview(text))
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(obj), &raw); err == nil {
		return extraction.Result{
			Species:      asString(raw.Species),
			Breed:        asString(raw.Breed),
			PrimaryColor: asString(raw.PrimaryColor),
			AgeGroup:     asString(raw.AgeGroup),
			Size:         asString(raw.Size),
			Marks:        asStrings(raw.Marks),
		}, nil
	}

	m := speciesRe.FindStringSubmatch(text)
	if m == nil {
		return extraction.Result{}, errors.New("invalid json in model response: " + preview(text))
	}
	res := extraction.Result{Species: m[1]}
	if b := breedRe.FindStringSubmatch(text); b != nil {
		res.Breed = b[1]
	}
	if c := colorRe.FindStringSubmatch(text); c != nil {
		res.PrimaryColor = c[1]
	}
	return res, nil
}

// firstObject devuelve el primer {...} balanceado, ignorando llaves dentro de strings.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	// objeto sin cerrar: se lo pasa igual para que el fallback por regex tenga chance
	return s[start:], true
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func preview(s string) string {
	if len(s) > 300 {
		return s[:300]
	}
	return s
}
