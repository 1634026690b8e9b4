package notify

// MatchNotice es el resumen de un match que se entrega a los notifiers.
type MatchNotice struct {
	MatchID       string
	Score         int
	MatchedFields []string

	LostReportID string
	OwnerName    string
	OwnerEmail   string
	PetName      string
	PetType      string

	FoundReportID string
	FoundImageURL string
	FoundLocation string
	FoundPhone    string
	FoundSpecies  string
	FoundBreed    string
	FoundColor    string
}
