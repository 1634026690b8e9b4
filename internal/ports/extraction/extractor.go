package extraction

import "context"

// Extractor analiza una imagen y devuelve atributos estructurados.
// Debe respetar la cancelación del ctx.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (Result, error)
}
