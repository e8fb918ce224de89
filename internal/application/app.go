// Package application wires the import components from configuration.
// The HTTP server and the command-line tool share it so both run the same
// pipeline against the same catalog server.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/config"
	"github.com/JonMunkholm/bookimport/internal/csrf"
	"github.com/JonMunkholm/bookimport/internal/history"
	"github.com/JonMunkholm/bookimport/internal/importer"
	"github.com/JonMunkholm/bookimport/internal/metrics"
	"github.com/JonMunkholm/bookimport/internal/sheet"
	"github.com/JonMunkholm/bookimport/internal/submit"
)

// App holds the long-lived import components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Decoder   *sheet.Decoder
	Validator *catalog.Validator
	Submitter *submit.Client
	Limiter   *importer.Limiter
	History   history.Store
	Metrics   *metrics.Metrics

	pool *pgxpool.Pool
}

// New builds the components described by cfg. With a database URL the
// history goes to PostgreSQL, otherwise it is kept in memory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	submitter, err := newSubmitter(cfg.Catalog, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Decoder:   sheet.NewDecoder(cfg.Import.MaxFileSize),
		Validator: catalog.NewBulkValidator(cfg.Import.RequireISBN),
		Submitter: submitter,
		Limiter:   importer.NewLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		Metrics:   metrics.New(prometheus.NewRegistry()),
	}

	if cfg.Database.URL == "" {
		app.History = history.NewMemoryStore(cfg.Import.HistoryLimit)
		logger.Info("import history kept in memory", "limit", cfg.Import.HistoryLimit)
		return app, nil
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	store := history.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	app.pool = pool
	app.History = store

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logger.Info("import history stored in database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return app, nil
}

// NewPipeline returns an idle pipeline sharing the app's components.
func (a *App) NewPipeline() *importer.Pipeline {
	return importer.NewPipeline(importer.Options{
		Decoder:     a.Decoder,
		Validator:   a.Validator,
		Submitter:   a.Submitter,
		Limiter:     a.Limiter,
		Recorder:    importer.Recorders{history.NewRecorder(a.History, a.Logger), a.Metrics},
		Logger:      a.Logger,
		ReloadAfter: a.Config.Import.ReloadDelay,
	})
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = db.MaxConns
	poolConfig.MinConns = db.MinConns
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// newSubmitter builds the catalog client. The HTTP client keeps a cookie
// jar so a csrftoken cookie set by the catalog can serve as the last token
// fallback. When a form page is configured the session cookie lives in the
// jar, since the page request needs it too.
func newSubmitter(cc config.CatalogConfig, logger *slog.Logger) (*submit.Client, error) {
	target, err := url.Parse(cc.UploadURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog upload URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	client := &http.Client{Timeout: cc.Timeout, Jar: jar}

	opts := []submit.Option{
		submit.WithHTTPClient(client),
		submit.WithTokenSource(csrf.Default(client, cc.FormURL, cc.CSRFToken, target)),
		submit.WithLogger(logger),
	}

	if cc.SessionID != "" && cc.FormURL != "" {
		session := &http.Cookie{Name: cc.SessionCookie, Value: cc.SessionID, Path: "/"}
		jar.SetCookies(target, []*http.Cookie{session})
		if page, err := url.Parse(cc.FormURL); err == nil && page.Host != target.Host {
			jar.SetCookies(page, []*http.Cookie{session})
		}
	} else {
		opts = append(opts, submit.WithSessionCookie(cc.SessionCookie, cc.SessionID))
	}

	return submit.NewClient(cc.UploadURL, opts...), nil
}
