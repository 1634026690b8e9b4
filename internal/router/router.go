package router

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-lost-found/docs" // registra el documento swagger
	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/middleware"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"
)

type Options struct {
	Log     logger.Logger
	Metrics *metrics.Metrics // puede ser nil: /metrics no se expone

	Reports  *reports.Service
	Matching *matching.Service

	// Ready chequea dependencias para /ready (p.ej. ping a la DB). Opcional.
	Ready func(ctx context.Context) error

	CORSOrigins    []string
	MaxUploadBytes int64

	// Sentry activa la captura de panics; requiere sentry.Init previo.
	Sentry bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(opts.Log))
	r.Use(chimw.Recoverer)
	if opts.Sentry && sentry.CurrentHub().Client() != nil {
		// Repanic: el Recoverer de arriba sigue respondiendo 500.
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.ActorHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(middleware.ActorContext)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	reports.RegisterRoutes(r, opts.Reports, reports.HandlerOptions{
		Matched:        opts.Matching,
		MaxUploadBytes: opts.MaxUploadBytes,
		Log:            opts.Log,
	})
	matching.RegisterRoutes(r, opts.Matching, opts.Reports)

	return r
}
