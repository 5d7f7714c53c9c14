// Package server exposes the translation service as a JSON HTTP API with
// Server-Sent Events for session updates.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/service"
)

// Config configures the HTTP server.
type Config struct {
	Port           int
	AllowedOrigins []string
	// SSEKeepAlive is the interval of comment pings on event streams.
	SSEKeepAlive time.Duration
}

// HTTPServer serves the REST API, health and metrics.
type HTTPServer struct {
	svc    *service.TranslationService
	logger *logrus.Logger
	cfg    Config
	srv    *http.Server
}

// NewHTTPServer creates a server for svc.
func NewHTTPServer(svc *service.TranslationService, logger *logrus.Logger, cfg Config) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.SSEKeepAlive <= 0 {
		cfg.SSEKeepAlive = 15 * time.Second
	}
	s := &HTTPServer{svc: svc, logger: logger, cfg: cfg}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/languages", func(r chi.Router) {
			r.Get("/", s.listLanguages)
			r.Get("/id/{id}", s.getLanguageByID)
			r.Get("/{code}", s.getLanguageByCode)
		})
		r.Post("/detect", s.detectLanguage)
		r.Post("/translate", s.translate)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.recentHistory)
			r.Delete("/", s.clearHistory)
			r.Get("/all", s.allHistory)
			r.Get("/{id}", s.getHistory)
			r.Delete("/{id}", s.deleteHistory)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.getSettings)
			r.Patch("/", s.patchSettings)
			r.Post("/reset", s.resetSettings)
			r.Put("/{key}", s.putSetting)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.openSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.closeSession)
				r.Post("/heartbeat", s.heartbeatSession)
				r.Put("/text", s.setSessionText)
				r.Put("/languages", s.setSessionLanguages)
				r.Post("/swap", s.swapSession)
				r.Post("/translate", s.translateSession)
				r.Post("/clear", s.clearSession)
				r.Post("/clear-translation", s.clearSessionTranslation)
				r.Post("/dictation", s.toggleDictation)
				r.Post("/speech", s.toggleSpeech)
				r.Post("/speech/stop", s.stopSpeech)
				r.Put("/volume", s.setVolume)
				r.Get("/events", s.sessionEvents)
			})
		})
	})

	return r
}

// Start listens until Shutdown. It returns nil after a clean shutdown.
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port": s.cfg.Port,
	}).Info("Starting HTTP API server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones until ctx ends.
// Open event streams are closed by closing their sessions first.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

type healthChecker interface {
	CheckHealth(ctx context.Context) error
}

// handleHealth reports healthy unless the translation backend fails its
// health check.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "healthy",
		"sessions": s.svc.Sessions.Len(),
	}
	if hc, ok := s.svc.Client.(healthChecker); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := hc.CheckHealth(ctx); err != nil {
			s.logger.WithError(err).Warn("Translator health check failed")
			resp["status"] = "degraded"
			resp["error"] = err.Error()
			render.Status(r, http.StatusServiceUnavailable)
		}
	}
	render.JSON(w, r, resp)
}
