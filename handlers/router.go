package handlers

import (
	"context"
	"net/http"
	"time"

	"timesheet/archive"
	"timesheet/middleware"
	"timesheet/service"
	"timesheet/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Auth    service.AuthService
	Entries service.EntryService
	Reports service.ReportService
	Cookies *session.CookieCodec

	// Archive is nil when no bucket is configured.
	Archive       archive.Sink
	ArchivePrefix string

	// Health reports whether the database answers.
	Health         func(context.Context) error
	Logger         logrus.FieldLogger
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Cookies)
	timesheetHandler := NewTimesheetHandler(cfg.Entries)
	reportHandler := NewReportHandler(cfg.Reports, cfg.Archive, cfg.ArchivePrefix)
	authenticator := middleware.NewAuthenticator(cfg.Cookies, cfg.Auth)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	router.Get("/health", health(cfg.Health))

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authenticator.RequireSession)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Get("/timesheets", timesheetHandler.List)
			r.Post("/timesheets", timesheetHandler.Create)
			r.Get("/timesheets/{id}", timesheetHandler.Get)
			r.Put("/timesheets/{id}", timesheetHandler.Update)
			r.Delete("/timesheets/{id}", timesheetHandler.Delete)

			// Manager and admin only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Put("/timesheets/{id}/status", timesheetHandler.SetStatus)
				r.Get("/reports/hours", reportHandler.Hours)
				r.Get("/reports/hours.csv", reportHandler.HoursCSV)
				r.Get("/reports/hours-by-date-range", reportHandler.HoursByDateRange)
				r.Post("/reports/hours/archive", reportHandler.Archive)
			})
		})
	})

	return router
}

func health(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				middleware.LoggerFrom(r.Context()).WithError(err).Warn("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
