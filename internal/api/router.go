package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Service        AppointmentService
	Logger         *zap.Logger
	Dependencies   []Dependency
	Location       *time.Location
	AllowedOrigins []string
	WriteRateLimit int // per IP per minute, 0 disables
	Env            string
	Version        string
	Now            func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	h := &appointmentHandlers{
		svc:      cfg.Service,
		validate: validator.New(),
		loc:      cfg.Location,
		now:      cfg.Now,
	}

	r.Get("/calendars", h.listCalendars)
	r.Route("/calendars/{calendarID}", func(r chi.Router) {
		r.Get("/appointments", h.list)
		r.Get("/appointments.ics", h.exportICS)
		r.Get("/appointments/{id}", h.get)

		r.Group(func(r chi.Router) {
			if cfg.WriteRateLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.WriteRateLimit, time.Minute))
			}
			r.Post("/appointments", h.create)
			r.Post("/appointments/validate", h.validateCandidate)
			r.Put("/appointments/{id}", h.update)
			r.Delete("/appointments/{id}", h.delete)
		})
	})

	return r
}
