// Package httpapi exposes the cost engine as a JSON HTTP API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/facecost/internal/compare"
	"github.com/Simplici0/facecost/internal/engine"
	"github.com/Simplici0/facecost/internal/factors"
	"github.com/Simplici0/facecost/internal/logger"
	"github.com/Simplici0/facecost/internal/restaurant"
	"github.com/Simplici0/facecost/internal/results"
)

const maxBodyBytes = 1 << 20

// Engine is the calculation boundary used by the handlers.
type Engine interface {
	Calculate(ctx context.Context, req restaurant.Request) (engine.Result, error)
	Validate(req restaurant.Request) engine.ValidationReport
}

// Comparer runs scenario comparisons.
type Comparer interface {
	Run(ctx context.Context, scenarios []restaurant.Request) compare.Report
}

// SessionReader reads persisted calculations.
type SessionReader interface {
	GetSession(ctx context.Context, id string) (results.Session, error)
	ListItems(ctx context.Context, sessionID string) ([]results.StoredItem, error)
}

// FactorCatalog lists and edits stored factors.
type FactorCatalog interface {
	List(ctx context.Context) ([]factors.CostFactor, error)
	ListByCategory(ctx context.Context, category string) ([]factors.CostFactor, error)
	Upsert(ctx context.Context, f factors.CostFactor) (bool, error)
}

// CacheClearer drops cached factor resolutions.
type CacheClearer interface {
	ClearCache()
}

// Pinger reports database health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps wires the API. Sessions, Factors and DB may be nil when the server
// runs without a database; the matching routes then answer 503.
type Deps struct {
	Engine     Engine
	Comparer   Comparer
	Sessions   SessionReader
	Factors    FactorCatalog
	Cache      CacheClearer
	DB         Pinger
	AdminToken string
	Logger     *slog.Logger
}

type server struct {
	engine     Engine
	comparer   Comparer
	sessions   SessionReader
	factors    FactorCatalog
	cache      CacheClearer
	db         Pinger
	adminToken string
	logger     *slog.Logger
}

// NewRouter builds the chi router serving the API.
func NewRouter(d Deps) http.Handler {
	s := &server{
		engine:     d.Engine,
		comparer:   d.Comparer,
		sessions:   d.Sessions,
		factors:    d.Factors,
		cache:      d.Cache,
		db:         d.DB,
		adminToken: d.AdminToken,
		logger:     d.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)
		r.Post("/validate", s.handleValidate)
		r.Post("/compare", s.handleCompare)
		r.Get("/sessions/{id}/items", s.handleSessionItems)
		r.Get("/factors", s.handleFactorsList)

		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Put("/factors", s.handleFactorUpsert)
			r.Delete("/factors/cache", s.handleCacheClear)
		})
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http.request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.Error("http.panic", "request_id", middleware.GetReqID(r.Context()), "panic", v)
				writeJSON(w, http.StatusInternalServerError, &engine.Error{
					Kind:    engine.KindUnexpected,
					Message: "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
