// Package bootstrap arma los colaboradores del proceso a partir de config.Config.
// Es el único lugar que conoce los adapters concretos.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	geminix "pet-lost-found/internal/adapters/extraction/gemini"
	staticx "pet-lost-found/internal/adapters/extraction/static"
	"pet-lost-found/internal/adapters/notify/email"
	"pet-lost-found/internal/adapters/notify/redispub"
	memstore "pet-lost-found/internal/adapters/objectstore/memory"
	s3store "pet-lost-found/internal/adapters/objectstore/s3"
	mem "pet-lost-found/internal/adapters/storage/memory"
	pg "pet-lost-found/internal/adapters/storage/postgres"
	"pet-lost-found/internal/adapters/storage/sqlite"
	"pet-lost-found/internal/config"
	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/metrics"
	"pet-lost-found/internal/ports/extraction"
	"pet-lost-found/internal/ports/notify"
	"pet-lost-found/internal/ports/objectstore"
)

// Overrides reemplaza adapters externos (tests, herramientas). Los campos nil usan config.
type Overrides struct {
	LogOutput io.Writer
	Extractor extraction.Extractor
	Bucket    objectstore.Bucket
	Notifiers []notify.Notifier
}

type App struct {
	Config  config.Config
	Log     logger.Logger
	Metrics *metrics.Metrics

	// DB es nil con STORE_DRIVER=memory.
	DB *sql.DB

	ReportRepo reports.Repository
	MatchRepo  matching.Repository
	Bucket     objectstore.Bucket
	Extractor  extraction.Extractor

	Reports  *reports.Service
	Matching *matching.Service
	Finder   *matching.Finder

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, ov Overrides) (*App, error) {
	app := &App{
		Config:  cfg,
		Log:     NewLogger(cfg, ov.LogOutput),
		Metrics: metrics.New(),
	}

	if err := app.openStore(ctx); err != nil {
		return nil, err
	}

	bucket, err := newBucket(ctx, cfg, ov.Bucket)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Bucket = bucket

	extractor := ov.Extractor
	if extractor == nil {
		if extractor, err = NewExtractor(cfg, app.Log); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	app.Extractor = extractor

	notifiers := ov.Notifiers
	if notifiers == nil {
		notifiers = app.newNotifiers()
	}

	app.Reports = reports.NewService(app.ReportRepo, bucket, extractor, reports.Config{
		ExtractionTimeout: cfg.ExtractionTimeout,
		AutomatedUserIDs:  cfg.AutomatedUserIDs,
		KeyPrefix:         cfg.S3.KeyPrefix,
	}, app.Log, app.Metrics)

	dispatcher := matching.NewDispatcher(notifiers, cfg.NotifyTimeout, app.Log, app.Metrics)
	app.Finder = matching.NewFinder(app.Reports, app.MatchRepo, dispatcher, app.Log, app.Metrics)
	app.Matching = matching.NewService(app.MatchRepo, app.Reports, app.Log, app.Metrics)

	app.Reports.OnCreated(func(ctx context.Context, r reports.Report) {
		app.Finder.OnReportCreated(ctx, r)
	})

	return app, nil
}

// NewLogger agrega el sink de Sentry cuando hay DSN; el hub lo inicializa main.
func NewLogger(cfg config.Config, out io.Writer) logger.Logger {
	var sinks []slog.Handler
	if cfg.SentryDSN != "" {
		sinks = append(sinks, logger.NewSentryHandler(sentry.CurrentHub()))
	}
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
		Output: out,
		Sinks:  sinks,
	})
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.StoreDriver {
	case config.DriverPostgres:
		db, err := pg.Open(a.Config.DBDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.useSQL(db, pg.NewReportsRepo(db), pg.NewMatchesRepo(db))
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, a.Config.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		a.useSQL(db, sqlite.NewReportsRepo(db), sqlite.NewMatchesRepo(db))
	case config.DriverMemory, "":
		a.ReportRepo = mem.NewReportsRepo()
		a.MatchRepo = mem.NewMatchesRepo()
	default:
		return fmt.Errorf("unknown store driver %q", a.Config.StoreDriver)
	}
	a.Log.Info("record store ready", map[string]any{"driver": a.Config.StoreDriver})
	return nil
}

func (a *App) useSQL(db *sql.DB, rr reports.Repository, mr matching.Repository) {
	a.DB = db
	a.ReportRepo = rr
	a.MatchRepo = mr
	a.closers = append(a.closers, db.Close)
}

func newBucket(ctx context.Context, cfg config.Config, override objectstore.Bucket) (objectstore.Bucket, error) {
	if override != nil {
		return override, nil
	}
	if cfg.S3.Bucket == "" {
		return memstore.New(cfg.S3.PublicBaseURL), nil
	}
	store, err := s3store.New(ctx, s3store.Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		PathStyle:       cfg.S3.PathStyle,
		PublicBaseURL:   cfg.S3.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 store: %w", err)
	}
	return store, nil
}

func NewExtractor(cfg config.Config, log logger.Logger) (extraction.Extractor, error) {
	switch cfg.Extractor {
	case config.ExtractorGemini:
		ex, err := geminix.New(geminix.Config{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Models:  cfg.Gemini.Models,
			Timeout: cfg.ExtractionTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		return ex, nil
	case config.ExtractorStatic, "":
		return staticx.Default(), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
	}
}

// newNotifiers: email siempre (sin SMTP queda como falla logueada), redis si hay REDIS_ADDR.
func (a *App) newNotifiers() []notify.Notifier {
	cfg := a.Config
	out := []notify.Notifier{email.New(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})}

	if cfg.Redis.Addr != "" {
		client := redispub.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, client.Close)
		out = append(out, redispub.New(client, cfg.Redis.Channel))
	}
	return out
}

// Ping verifica el record store (readiness).
func (a *App) Ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
