package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/pipeline"
)

const (
	apiKeyHeader    = "X-API-Key"
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Checker runs hazard checks and reports readiness.
type Checker interface {
	Run(ctx context.Context, hazard pipeline.Hazard, tier string, args pipeline.Args) (string, error)
	CheckReadiness(ctx context.Context) error
}

// RuleLister exposes the current alert rules.
type RuleLister interface {
	Snapshot() map[domain.Category]alert.Rule
}

// TierFunc resolves the tier of a request from its API key.
type TierFunc func(apiKey string) string

// Server exposes the check API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	checker    Checker
	rules      RuleLister
	tierFor    TierFunc
	logger     *slog.Logger
}

// NewServer wires the routes and middleware.
func NewServer(addr string, checker Checker, rules RuleLister, tierFor TierFunc, logger *slog.Logger) *Server {
	s := &Server{
		checker: checker,
		rules:   rules,
		tierFor: tierFor,
		logger:  logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(checker)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/checks/{hazard}", s.handleCheck).Methods(http.MethodPost)
	v1.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/{category}", s.handleUpdateAlert).Methods(http.MethodPatch)

	var h http.Handler = r
	h = s.withRequestID(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger}),
		handlers.PrintRecoveryStack(true),
	)(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", apiKeyHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(h)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type checkResponse struct {
	Hazard string `json:"hazard"`
	Tier   string `json:"tier"`
	Report string `json:"report"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	hazard := pipeline.Hazard(mux.Vars(r)["hazard"])
	args, err := decodeArgs(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.run(w, r, hazard, args)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.rules.Snapshot())
}

// handleUpdateAlert runs configure_alerts so the update is gated like any
// other check.
func (s *Server) handleUpdateAlert(w http.ResponseWriter, r *http.Request) {
	partial, err := decodeArgs(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.run(w, r, pipeline.ConfigureAlerts, pipeline.Args{
		"alert_type": mux.Vars(r)["category"],
		"config":     map[string]any(partial),
	})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, hazard pipeline.Hazard, args pipeline.Args) {
	tier := s.tierFor(r.Header.Get(apiKeyHeader))
	report, err := s.checker.Run(r.Context(), hazard, tier, args)
	if errors.Is(err, pipeline.ErrUnknownHazard) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("check failed", "hazard", hazard, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, checkResponse{Hazard: string(hazard), Tier: tier, Report: report})
}

// decodeArgs reads an optional JSON object body.
func decodeArgs(w http.ResponseWriter, r *http.Request) (pipeline.Args, error) {
	args := pipeline.Args{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return args, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

// withRequestID tags every request with an ID, reusing the caller's when set.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "request_id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("http handler panic", "panic", fmt.Sprint(v...))
}
