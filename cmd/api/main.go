package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"pet-lost-found/internal/bootstrap"
	"pet-lost-found/internal/config"
	"pet-lost-found/internal/router"
)

// @title Pet Lost & Found API
// @version 1.0
// @description Reportes de mascotas perdidas y encontradas con matching automático por atributos.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sentryOn := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
		}); err != nil {
			log.Printf("sentry init failed: %v", err)
		} else {
			sentryOn = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Overrides{})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = app.Close() }()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			Log:            app.Log,
			Metrics:        app.Metrics,
			Reports:        app.Reports,
			Matching:       app.Matching,
			Ready:          app.Ping,
			CORSOrigins:    cfg.CORSOrigins,
			MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
			Sentry:         sentryOn,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// extracción + uploads pueden tardar; el techo es el timeout de extracción con margen
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.ExtractionTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Log.Info("starting server", map[string]any{
			"addr":      srv.Addr,
			"store":     cfg.StoreDriver,
			"extractor": cfg.Extractor,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			app.Log.Error("server error", map[string]any{"err": err})
		}
	}

	app.Log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Log.Error("server shutdown error", map[string]any{"err": err})
	}
}
