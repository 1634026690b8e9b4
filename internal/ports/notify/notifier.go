package notify

import "context"

// Notifier entrega un MatchNotice por algún canal (email, pub/sub, ...).
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n MatchNotice) error
}
