package matching

import (
	"context"
	"fmt"
	"time"

	"pet-lost-found/internal/apperr"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"
	"pet-lost-found/internal/ports/notify"
)

const DefaultNotifyTimeout = 10 * time.Second

// Dispatcher avisa al dueño del reporte Lost por cada notifier configurado.
// Las fallas se loguean y se cuentan; nunca se propagan.
type Dispatcher struct {
	notifiers []notify.Notifier
	timeout   time.Duration
	log       logger.Logger
	metrics   *metrics.Metrics
}

func NewDispatcher(notifiers []notify.Notifier, timeout time.Duration, log logger.Logger, m *metrics.Metrics) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		log:       logger.OrNop(log).With(map[string]any{"component": "notification_dispatcher"}),
		metrics:   m,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, m Match, lost, found reports.Report) {
	if d == nil {
		return
	}
	notice := BuildNotice(m, lost, found)
	for _, n := range d.notifiers {
		err := d.notifyOne(ctx, n, notice)
		d.metrics.Notification(n.Name(), err == nil)
		if err != nil {
			d.log.Warn("match notification failed", map[string]any{
				"match_id": m.ID,
				"notifier": n.Name(),
				"err":      &apperr.NotificationError{MatchID: m.ID, Notifier: n.Name(), Err: err},
			})
		}
	}
}

func (d *Dispatcher) notifyOne(ctx context.Context, n notify.Notifier, notice notify.MatchNotice) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notifier panic: %v", rec)
		}
	}()

	nctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return n.Notify(nctx, notice)
}

// BuildNotice arma el resumen para el dueño del Lost: imagen, campos que coinciden
// y ubicación del Found.
func BuildNotice(m Match, lost, found reports.Report) notify.MatchNotice {
	return notify.MatchNotice{
		MatchID:       m.ID,
		Score:         m.Score,
		MatchedFields: append([]string(nil), m.MatchedFields...),

		LostReportID: lost.ID,
		OwnerName:    lost.Contact.Name,
		OwnerEmail:   lost.Contact.Email,
		PetName:      lost.PetName,
		PetType:      lost.PetType,

		FoundReportID: found.ID,
		FoundImageURL: found.PrimaryImageURL(),
		FoundLocation: found.Contact.Location,
		FoundPhone:    found.Contact.Phone,
		FoundSpecies:  found.Attributes.Species,
		FoundBreed:    found.Attributes.Breed,
		FoundColor:    found.Attributes.PrimaryColor,
	}
}
