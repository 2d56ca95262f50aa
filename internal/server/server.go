// Package server assembles the HTTP stack: middleware, storefront, admin, health and metrics.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alc/leasing-form/internal/admin"
	"github.com/alc/leasing-form/internal/configurator"
	"github.com/alc/leasing-form/internal/forms"
	"github.com/alc/leasing-form/internal/leasing"
	custommw "github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/observability"
	"github.com/alc/leasing-form/internal/storefront"
	"github.com/alc/leasing-form/internal/vehicles"
)

// Config holds runtime options and collaborators for the HTTP server.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Logger     *zap.Logger
	Vehicles   vehicles.Repository
	Forms      forms.Store
	Calculator *leasing.Calculator
	Messenger  leasing.Messenger

	Session       custommw.SessionConfig
	AdminBasePath string
	Authenticator custommw.Authenticator
	Ready         func() error
}

// New constructs the HTTP server with the middleware stack and every route mounted.
func New(cfg Config) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Vehicles == nil {
		seed, err := vehicles.DefaultSeed()
		if err != nil {
			return nil, err
		}
		cfg.Vehicles = vehicles.NewStaticRepository(seed)
	}
	if cfg.Calculator == nil {
		cfg.Calculator = leasing.NewCalculator()
	}
	if cfg.Authenticator == nil {
		return nil, errors.New("server: admin authenticator is required")
	}

	renderer, err := configurator.NewRenderer()
	if err != nil {
		return nil, err
	}
	shop, err := storefront.NewHandlers(storefront.Dependencies{
		Vehicles:   cfg.Vehicles,
		Forms:      cfg.Forms,
		Calculator: cfg.Calculator,
		Messenger:  cfg.Messenger,
		Renderer:   renderer,
	})
	if err != nil {
		return nil, err
	}
	adminHandlers, err := admin.NewHandlers(admin.Dependencies{
		Vehicles:      cfg.Vehicles,
		Authenticator: cfg.Authenticator,
		BasePath:      cfg.AdminBasePath,
		Currency:      cfg.Calculator.Currency(),
		SecureCookies: cfg.Session.Secure,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.TraceMiddleware())
	router.Use(custommw.Logger(logger))
	router.Use(custommw.Recoverer())

	router.Get("/healthz", healthHandler(cfg.Ready))
	router.Handle("/metrics", observability.MetricsHandler())

	router.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))
		r.Use(custommw.HTMX())
		r.Use(custommw.Session(cfg.Session))
		r.Use(custommw.CSRF(custommw.CSRFConfig{
			FormField: "csrf_token",
			Exempt:    storefront.IsSubmitPath,
		}))
		shop.Routes(r)
		adminHandlers.Routes(r)
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

func healthHandler(ready func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				observability.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
