package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const actorKey ctxKey = "actor"

// AnonymousActor es el actor cuando el request no trae identidad.
const AnonymousActor = "anonymous"

// ActorHeader identifica al usuario que opera. No hay autenticación: el valor se toma tal cual.
const ActorHeader = "X-User-ID"

// ActorContext:
// - Si viene X-User-ID => lo guarda en el contexto.
// - Si no, el request sigue igual y Actor() devuelve "anonymous".
func ActorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := strings.TrimSpace(r.Header.Get(ActorHeader)); uid != "" {
			ctx := context.WithValue(r.Context(), actorKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Actor devuelve el usuario del request o AnonymousActor.
func Actor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok && v != "" {
		return v
	}
	return AnonymousActor
}

// WithActor permite fijar el actor fuera de HTTP (CLI, tests).
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, strings.TrimSpace(actor))
}
