package matching

import (
	"strings"
	"time"

	"pet-lost-found/internal/apperr"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusAccepted:
		return StatusAccepted, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", apperr.Invalid("status", "must be pending, accepted or rejected")
	}
}

// Decision es la respuesta del usuario a un match propuesto.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", apperr.Invalid("decision", "must be accept or reject")
	}
}

// Status devuelve el estado terminal al que lleva la decisión.
func (d Decision) Status() Status {
	switch d {
	case DecisionAccept:
		return StatusAccepted
	case DecisionReject:
		return StatusRejected
	default:
		return ""
	}
}

// Match es una propuesta de emparejamiento entre un reporte Lost y uno Found.
// El par (LostReportID, FoundReportID) es único.
type Match struct {
	ID            string
	LostReportID  string
	FoundReportID string
	Score         int
	MatchedFields []string
	Status        Status
	DecidedBy     string
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Involves informa si el match referencia al reporte.
func (m Match) Involves(reportID string) bool {
	return m.LostReportID == reportID || m.FoundReportID == reportID
}

func (m Match) InvolvesAny(reportIDs []string) bool {
	for _, id := range reportIDs {
		if m.Involves(id) {
			return true
		}
	}
	return false
}
