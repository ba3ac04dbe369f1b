// Package server exposes the probe runner and run history over HTTP.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/canonica-labs/capprobe/internal/config"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/storage"
	"github.com/canonica-labs/capprobe/internal/suite"
	"github.com/canonica-labs/capprobe/pkg/api"
	"github.com/canonica-labs/capprobe/pkg/models"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// RequestTimeout bounds a single request, including probe runs.
const RequestTimeout = 60 * time.Second

// Server serves the capprobe HTTP API.
type Server struct {
	runner  *probe.Runner
	history storage.HistoryRepository
	log     *zap.Logger
	version string
	router  *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a server. history may be nil, in which case the run
// endpoints answer 404.
func New(runner *probe.Runner, history storage.HistoryRepository, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		runner:  runner,
		history: history,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get(api.EndpointHealth, s.handleHealth)
	r.Get(api.EndpointReady, s.handleReady)

	r.Get(api.EndpointProbes, s.handleListProbes)
	r.Post(api.EndpointProbeRun, s.handleRunProbe)

	r.Get(api.EndpointRuns, s.handleListRuns)
	r.Get(api.EndpointRun, s.handleGetRun)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.ServerConfig) error {
	srv := &http.Server{
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ListenAndServe listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	s.log.Info("server listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln, cfg)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Version: s.version})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if report == nil {
		respondError(w, statusFor(err), err)
		return
	}
	if err != nil {
		s.log.Warn("probe run side effect failed", zap.String("run_id", report.RunID), zap.Error(err))
	}

	status := http.StatusOK
	if !report.Passed {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set(api.HeaderRunID, report.RunID)
	respondJSON(w, status, report)
}

func (s *Server) handleListProbes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, suite.Describe(s.runner.Registry()))
}

func (s *Server) handleRunProbe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	report, err := s.runner.Run(r.Context(), name)
	if report == nil {
		respondError(w, statusFor(err), err)
		return
	}
	if err != nil {
		s.log.Warn("probe run side effect failed", zap.String("run_id", report.RunID), zap.Error(err))
	}

	status := http.StatusOK
	if !report.Passed {
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set(api.HeaderRunID, report.RunID)
	respondJSON(w, status, report)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusNotFound, errors.NewStorageUnavailable(config.HistoryNone, nil))
		return
	}

	limit := api.DefaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, errors.NewInvalidConfig("limit", "must be a positive integer"))
			return
		}
		limit = min(n, api.MaxRunsLimit)
	}

	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	out := models.RunList{Runs: make([]models.RunSummary, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, models.RunSummary(run))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if s.history == nil {
		respondError(w, http.StatusNotFound, errors.NewRunNotFound(runID))
		return
	}

	records, err := s.history.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, suite.RunDetail(records))
}

func statusFor(err error) int {
	var nf *errors.ErrProbeNotFound
	var rn *errors.ErrRunNotFound
	switch {
	case stderrors.As(err, &nf), stderrors.As(err, &rn):
		return http.StatusNotFound
	case errors.Code(err) == errors.CodeValidation:
		return http.StatusBadRequest
	case errors.Code(err) == errors.CodeDependency, errors.Code(err) == errors.CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	resp := models.ErrorResponse{Error: err.Error(), Code: errors.ExitCode(err)}
	if pe := errors.Describe(err); pe != nil {
		resp.Error = pe.Message
		resp.Reason = pe.Reason
		resp.Suggestion = pe.Suggestion
	}
	respondJSON(w, status, resp)
}
