// Package httpapi exposes the comparison service over HTTP: model listing
// and install/remove, profile CRUD, the streaming run endpoint, evaluation,
// exports, health probes, and Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmsuite/internal/run"
	"llmsuite/pkg/types"
)

// Runner drives the comparison loop and holds the single run's state.
type Runner interface {
	Run(ctx context.Context, req types.RunRequest, sink run.EventSink) error
	Cancel() bool
	Snapshot() types.RunSnapshot
	Evaluate(ctx context.Context, judgeModel, evaluationPrompt string, temperature float64) (types.EvaluationResult, error)
}

// ModelSource is the registry slice used by the model and profile endpoints.
type ModelSource interface {
	Models(ctx context.Context) ([]types.ModelDescriptor, error)
	Families(ctx context.Context) ([]types.ModelFamily, error)
	Installed(ctx context.Context) (map[string]bool, error)
	Invalidate()
}

// ModelInstaller installs and removes models via the external tool.
type ModelInstaller interface {
	Pull(ctx context.Context, name, version string) (string, error)
	Remove(ctx context.Context, name string) (string, error)
}

// ProfileStore persists named run configurations.
type ProfileStore interface {
	List() []string
	Get(name string) (types.Profile, bool)
	Save(p types.Profile) error
	Delete(name string) error
	SetDefault(name string) error
	DefaultName() string
}

// VersionProber reports the upstream inference server version. Used by the
// readiness probe.
type VersionProber interface {
	Version(ctx context.Context) (string, error)
}

// Server bundles the service dependencies of the HTTP layer.
type Server struct {
	Runner    Runner
	Models    ModelSource
	Installer ModelInstaller
	Profiles  ProfileStore
	Prober    VersionProber
	// UI is the embedded control panel; nil disables it.
	UI http.Handler
}

// NewMux builds the router with all endpoints and middleware.
func NewMux(s Server) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/models", s.handleListModels)
		api.Post("/models/refresh", s.handleRefreshModels)
		api.Post("/models/pull", s.handlePullModel)
		api.Post("/models/remove", s.handleRemoveModel)

		api.Get("/profiles", s.handleListProfiles)
		api.Get("/profiles/default", s.handleDefaultProfile)
		api.Get("/profiles/{name}", s.handleGetProfile)
		api.Put("/profiles/{name}", s.handleSaveProfile)
		api.Delete("/profiles/{name}", s.handleDeleteProfile)
		api.Post("/profiles/{name}/default", s.handleSetDefaultProfile)

		api.Get("/run", s.handleRunSnapshot)
		api.Post("/run", s.handleRun)
		api.Post("/run/cancel", s.handleCancelRun)
		api.Post("/run/evaluate", s.handleEvaluate)

		api.Get("/export/csv", s.handleExportCSV)
		api.Get("/export/json", s.handleExportJSON)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if _, err := s.Prober.Version(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("ollama unreachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	if s.UI != nil {
		r.Handle("/*", s.UI)
	}

	return r
}

// decodeJSON enforces the JSON content type and body cap, then decodes into
// dst. On failure the error response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
