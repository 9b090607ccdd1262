package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/lecternhq/lectern/internal/platform/http"
	"github.com/lecternhq/lectern/internal/platform/service"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/internal/platform/store/drivers/sqlite"
	"github.com/lecternhq/lectern/pkg/jwtx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the platform service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService        *service.TokenService
	userService         *service.UserService
	contentService      *service.ContentService
	classService        *service.ClassService
	dictionaryService   *service.DictionaryService
	documentService     *service.DocumentService
	rootAdminMonitor    *service.RootAdminMonitor
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. The config
// must already be validated; New only fails on real resource errors.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lectern",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("lectern starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lectern...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("lectern stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	codec, err := jwtx.NewHS256([]byte(app.cfg.SigningSecret), app.cfg.Issuer, app.cfg.Audience)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.tokenService = &service.TokenService{
		Codec:      codec,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Pinned: app.cfg.PinnedRootAdmins,
	}
	app.contentService = &service.ContentService{Store: app.db}
	app.classService = &service.ClassService{Store: app.db}
	app.dictionaryService = &service.DictionaryService{Store: app.db}
	app.documentService = &service.DocumentService{Store: app.db}

	app.rootAdminMonitor = service.NewRootAdminMonitor(
		app.db,
		app.cfg.PinnedRootAdmins,
		app.cfg.MonitorInterval,
	)

	app.housekeepingService = service.NewHousekeepingService(
		app.rootAdminMonitor,
		app.documentService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

func (app *Application) initHTTP() {
	authenticator := &httpapi.Authenticator{
		Tokens:  app.tokenService,
		Store:   app.db,
		Monitor: app.rootAdminMonitor,
		Pinned:  app.cfg.PinnedRootAdmins,
	}

	router := httpapi.NewRouter(BuildVersion, app.db, authenticator, app.logger)

	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.ContentService = app.contentService
	router.ClassService = app.classService
	router.DictionaryService = app.dictionaryService
	router.DocumentService = app.documentService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
