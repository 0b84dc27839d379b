package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/movieweb/internal/config"
	"github.com/Clark-Hu/movieweb/internal/metrics"
	"github.com/Clark-Hu/movieweb/internal/omdb"
	"github.com/Clark-Hu/movieweb/internal/repository"
	"github.com/Clark-Hu/movieweb/internal/store"
	"github.com/Clark-Hu/movieweb/internal/views"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     repository.DataManager
	metadata omdb.Client
	views    *views.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes. A nil
// metrics value gets a fresh registry.
func New(cfg config.Config, st *store.Store, repo repository.DataManager, metadata omdb.Client, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	if metadata == nil {
		metadata = omdb.DisabledClient{}
	}

	if st != nil {
		m.RegisterPoolStats(st.Stats)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		metadata: metadata,
		views:    renderer,
		metrics:  m,
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.NotFound(s.handleNotFound)
	s.router.Get("/", s.handleHome)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Get("/add_user", s.handleAddUserForm)
	s.router.Post("/add_user", s.handleAddUser)

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", s.handleUserMovies)
			r.Get("/add_movie", s.handleAddMovieForm)
			r.Post("/add_movie", s.handleAddMovie)
			r.Get("/update_movie/{movieId}", s.handleUpdateMovieForm)
			r.Post("/update_movie/{movieId}", s.handleUpdateMovie)
			r.Post("/delete_movie/{movieId}", s.handleDeleteMovie)
		})
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx ends or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http: listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, views.PageHome, nil)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderNotFound(w, "")
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	err := s.views.Render(w, status, page, data)
	switch {
	case err == nil:
	case errors.Is(err, views.ErrResponseWrite):
		s.logger.Warn("render: client write failed", "page", page, "err", err)
	default:
		s.logger.Error("render failed", "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) renderNotFound(w http.ResponseWriter, message string) {
	s.render(w, http.StatusNotFound, views.PageNotFound, views.MessagePage{Message: message})
}

func (s *Server) renderServerError(w http.ResponseWriter, message string) {
	s.render(w, http.StatusInternalServerError, views.PageError, views.MessagePage{Message: message})
}
