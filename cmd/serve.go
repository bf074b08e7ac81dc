package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timesheet/archive"
	"timesheet/database"
	"timesheet/handlers"
	"timesheet/reportcache"
	"timesheet/repository"
	"timesheet/service"
	"timesheet/session"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.SeedAdmin(ctx, db, cfg.Seed.AdminPassword, logger); err != nil {
		return err
	}

	sessions, err := buildSessionStore(ctx)
	if err != nil {
		return err
	}
	defer sessions.Close()

	routerCfg := handlers.RouterConfig{
		Cookies: session.NewCookieCodec(cfg.Session.Secret, session.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		}),
		ArchivePrefix:  cfg.Archive.Prefix,
		Health:         func(ctx context.Context) error { return database.Ping(ctx, db) },
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
	}

	sink, err := archive.NewS3Sink(ctx, archive.Config{
		Bucket:   cfg.Archive.Bucket,
		Region:   cfg.Archive.Region,
		Endpoint: cfg.Archive.Endpoint,
	}, logger)
	switch {
	case errors.Is(err, archive.ErrDisabled):
		logger.Info("report archive disabled: no bucket configured")
	case err != nil:
		return err
	default:
		routerCfg.Archive = sink
	}

	cache := reportcache.New(cfg.Reports.CacheTTL)
	auth, err := service.NewAuthService(repository.NewUserStore(db), sessions, service.AuthConfig{
		SessionTTL: cfg.Session.TTL,
	})
	if err != nil {
		return err
	}
	routerCfg.Auth = auth
	routerCfg.Entries = service.NewEntryService(repository.NewEntryStore(db), cache)
	routerCfg.Reports = service.NewReportService(repository.NewReportStore(db), cache)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
	return nil
}

func buildSessionStore(ctx context.Context) (session.Store, error) {
	if cfg.Session.Store != "redis" {
		logger.Warn("using in-memory sessions; they are lost on restart and not shared between instances")
		return session.NewMemoryStore(), nil
	}

	client, err := session.NewRedisClient(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword)
	if err != nil {
		return nil, err
	}
	logger.Infof("using redis sessions at %s", cfg.Session.RedisAddr)
	return session.NewRedisStore(client), nil
}
