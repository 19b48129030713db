// Package http serves the JSON API: records, dashboard queries, exports and
// settings for the authenticated owner.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"carteira/internal/auth"
	"carteira/internal/classify"
	applog "carteira/internal/log"
	"carteira/internal/middleware/ratelimit"
	"carteira/internal/middleware/security"
	"carteira/internal/middleware/trace"
	"carteira/internal/services"
	"carteira/internal/store"
)

// Deps are the collaborators the handlers call. Store and Tokens are
// required; the services default to plain instances over Store.
type Deps struct {
	Store      store.Store
	Tokens     *auth.TokenIssuer
	Dashboard  *services.Dashboard
	Records    *services.RecordService
	Primary    *services.PrimaryService
	Goals      *services.GoalService
	Classifier *classify.Classifier
	Logger     *applog.Logger

	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error

	// RateLimit is requests per minute per owner or client IP.
	RateLimit int
}

type Server struct {
	http.Server
	deps     Deps
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("http server: store is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("http server: token issuer is required")
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.Primary == nil {
		deps.Primary = services.NewPrimaryService(deps.Store, deps.Logger)
	}
	if deps.Dashboard == nil {
		deps.Dashboard = services.NewDashboard(deps.Store, nil, deps.Logger)
	}
	if deps.Records == nil {
		deps.Records = services.NewRecordService(deps.Store, deps.Primary, deps.Classifier, deps.Logger)
	}
	if deps.Goals == nil {
		deps.Goals = services.NewGoalService(deps.Store)
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.Default
	}

	s := &Server{
		deps:     deps,
		logger:   deps.Logger.WithComponent(applog.ComponentHTTP),
		detector: security.NewDetector(deps.Logger),
		now:      time.Now,
	}
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimit}, deps.Logger)
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/cards/{id}/invoice", s.handleInvoice)
	api.HandleFunc("GET /api/summary/annual", s.handleAnnual)
	api.HandleFunc("GET /api/export/annual.xlsx", s.handleExportXLSX)

	s.registerRecords(api)

	api.HandleFunc("POST /api/cards/{id}/primary", s.handleSetPrimaryCard)
	api.HandleFunc("POST /api/goals/{id}/primary", s.handleSetPrimaryGoal)
	api.HandleFunc("POST /api/goals/{id}/adjust", s.handleAdjustGoal)
	api.HandleFunc("POST /api/categories/seed", s.handleSeedCategories)

	api.HandleFunc("GET /api/settings", s.handleGetSettings)
	api.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	api.HandleFunc("POST /api/classify", s.handleClassify)

	onLimit := func(w http.ResponseWriter, r *http.Request) { TooManyRequestsError().Write(w) }
	authenticated := s.deps.Tokens.Middleware(s.onAuthError)(
		s.limiter.Middleware(s.limitKey, onLimit)(api),
	)

	root := http.NewServeMux()
	root.Handle("/api/", authenticated)
	root.Handle("GET /healthz", s.limiter.Middleware(s.limitKey, onLimit)(http.HandlerFunc(handleHealth)))
	root.Handle("GET /readyz", s.limiter.Middleware(s.limitKey, onLimit)(http.HandlerFunc(s.handleReady)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = root
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = applog.Middleware(s.logger)(h)
	h = s.detector.Middleware(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// limitKey buckets authenticated requests by owner and the rest by IP.
func (s *Server) limitKey(r *http.Request) string {
	if owner := auth.OwnerFromContext(r.Context()); owner != "" {
		return "owner:" + string(owner)
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

func (s *Server) onAuthError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.DebugContext(r.Context(), "Request rejected by authentication",
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err.Error(),
	)
	ErrorResponse(err).Write(w)
}

// writeError logs server-side failures and writes the mapped response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusFor(err)
	fields := applog.NewFields().
		WithOperation(op).
		WithError(err).
		WithErrorKind(string(store.KindOf(err)))
	fields[applog.FieldPath] = r.URL.Path
	fields[applog.FieldStatusCode] = status
	if owner := auth.OwnerFromContext(r.Context()); owner != "" {
		fields[applog.FieldOwner] = string(owner)
	}

	switch {
	case status >= 500 || status == http.StatusConflict:
		s.logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
	default:
		s.logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	ErrorResponse(err).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			NewJSONResponse().Status(http.StatusServiceUnavailable).
				Body(map[string]string{"status": "unavailable"}).Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
