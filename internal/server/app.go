// Package server initializes and runs the application: it selects the
// storage backend, applies migrations, wires the services together and
// serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/trackpass/internal/logging"
	"github.com/dmitrijs2005/trackpass/internal/server/accesscodes"
	"github.com/dmitrijs2005/trackpass/internal/server/auth"
	"github.com/dmitrijs2005/trackpass/internal/server/config"
	"github.com/dmitrijs2005/trackpass/internal/server/entitlements"
	"github.com/dmitrijs2005/trackpass/internal/server/httpapi"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
	"github.com/dmitrijs2005/trackpass/internal/server/migrations"
	"github.com/dmitrijs2005/trackpass/internal/server/payments"
	"github.com/dmitrijs2005/trackpass/internal/server/progress"
	"github.com/dmitrijs2005/trackpass/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler *httpapi.Handler
	db      *sql.DB
}

// NewApp wires the whole server. An empty DatabaseDSN selects the
// in-memory store, which loses all data on restart and is meant for
// development only.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var store kv.Store
	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := migrations.Run(ctx, db); err != nil {
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		store = kv.NewPostgresStore(db)
	} else {
		logger.Warn(ctx, "no database dsn configured, using in-memory store")
		store = kv.NewMemoryStore()
	}

	locks := kv.NewKeyLock()

	entitlementSvc := entitlements.NewService(store, locks, logger)
	userSvc := users.NewService(store, locks, cfg, logger)
	progressSvc := progress.NewService(store, locks, entitlementSvc, logger)
	codeSvc := accesscodes.NewService(store, locks, entitlementSvc, logger)

	provider := payments.NewClient(cfg.PaymentBaseEndpoint, cfg.PaymentAPIKey)
	paymentSvc := payments.NewService(provider, entitlementSvc, cfg, logger)

	admins := auth.NewAdminPolicy(store)

	handler := httpapi.NewHandler(userSvc, entitlementSvc, progressSvc, codeSvc, paymentSvc, admins, cfg, logger)

	return &App{config: cfg, logger: logger, handler: handler, db: db}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until the context is cancelled or a signal
// arrives, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown error: %w", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			return fmt.Errorf("db close error: %w", err)
		}
	}

	app.logger.Info(ctx, "stopped")
	return nil
}
