// Package redispub publica los matches nuevos en un canal Redis para consumidores externos
// (push, websockets, dashboards).
package redispub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"pet-lost-found/internal/ports/notify"
)

const (
	DefaultChannel = "petfinder:matches"
	EventType      = "match.created"
)

// Publisher es el subconjunto de *redis.Client que se usa.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Event es el payload JSON publicado.
type Event struct {
	Type          string    `json:"type"`
	MatchID       string    `json:"match_id"`
	LostReportID  string    `json:"lost_report_id"`
	FoundReportID string    `json:"found_report_id"`
	Score         int       `json:"score"`
	MatchedFields []string  `json:"matched_fields"`
	PetType       string    `json:"pet_type,omitempty"`
	FoundImageURL string    `json:"found_image_url,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Notifier struct {
	pub     Publisher
	channel string
	now     func() time.Time
}

func New(pub Publisher, channel string) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Notifier{pub: pub, channel: channel, now: time.Now}
}

// NewClient arma el cliente Redis a partir de addr/password/db.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (n *Notifier) Name() string { return "redis" }

func (n *Notifier) Notify(ctx context.Context, notice notify.MatchNotice) error {
	payload, err := json.Marshal(Event{
		Type:          EventType,
		MatchID:       notice.MatchID,
		LostReportID:  notice.LostReportID,
		FoundReportID: notice.FoundReportID,
		Score:         notice.Score,
		MatchedFields: notice.MatchedFields,
		PetType:       notice.PetType,
		FoundImageURL: notice.FoundImageURL,
		OccurredAt:    n.now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.pub.Publish(ctx, n.channel, payload).Err()
}
