// Package handlers exposes the account lifecycle and story CRUD over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ahmedoumar/storify/internal/auth"
	"github.com/ahmedoumar/storify/internal/stories"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP layer.
type Options struct {
	AllowedOrigins []string
	SigningKey     string
	TokenTTL       time.Duration
	Middleware     func(http.Handler) http.Handler
}

// Handler wires the lifecycle service and story store into HTTP endpoints.
type Handler struct {
	auth       *auth.Service
	stories    *stories.Store
	signingKey []byte
	tokenTTL   time.Duration
	opts       Options
}

// New validates dependencies and builds the HTTP handler layer.
func New(authService *auth.Service, storyStore *stories.Store, opts Options) (*Handler, error) {
	if authService == nil {
		return nil, errors.New("auth service is required")
	}
	if storyStore == nil {
		return nil, errors.New("story store is required")
	}
	if opts.SigningKey == "" {
		return nil, errors.New("signing key is required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 15 * time.Minute
	}

	return &Handler{
		auth:       authService,
		stories:    storyStore,
		signingKey: []byte(opts.SigningKey),
		tokenTTL:   opts.TokenTTL,
		opts:       opts,
	}, nil
}

// Router constructs the chi router containing all API endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if h.opts.Middleware != nil {
		r.Use(h.opts.Middleware)
	}

	allowed := h.opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.handleSignup)
			r.Post("/confirm", h.handleConfirm)
			r.Post("/resend", h.handleResend)
			r.Post("/login", h.handleLogin)
			r.Post("/reset/request", h.handleResetRequest)
			r.Post("/reset", h.handleReset)
			r.Get("/exists", h.handleAccountExists)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAuth)
				r.Delete("/account", h.handleDeleteAccount)
			})
		})

		r.Route("/stories", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/", h.handleSaveStory)
			r.Get("/", h.handleListStories)
			r.Get("/{id}", h.handleGetStory)
			r.Put("/{id}", h.handleUpdateStory)
			r.Delete("/{id}", h.handleDeleteStory)
		})
	})

	return r
}
