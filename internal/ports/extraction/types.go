package extraction

// Result son los atributos visuales que devuelve un extractor.
// Los campos pueden venir vacíos; el dominio los normaliza a "Unknown".
type Result struct {
	Species      string
	Breed        string
	PrimaryColor string
	AgeGroup     string
	Size         string
	Marks        []string
}
