// Package http serves the cashbook dashboard, the entry form and the JSON API.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cashbook/internal/cache"
	"cashbook/internal/core"
	"cashbook/internal/log"
	"cashbook/internal/middleware/ratelimit"
	"cashbook/internal/middleware/security"
	"cashbook/internal/middleware/trace"
	"cashbook/internal/services"
	appweb "cashbook/web"
)

const (
	snapshotKey      = "records"
	snapshotCapacity = 1
	cleanupInterval  = time.Minute
	readyTimeout     = 2 * time.Second
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the server. Zero values pick defaults.
type Options struct {
	RateLimitPerMinute int
	CacheTTL           time.Duration
	// Location is where form dates and times are interpreted. Defaults to time.Local.
	Location *time.Location
	Logger   *log.Logger
}

// Server is the cashbook HTTP server.
type Server struct {
	http.Server

	templates *template.Template
	records   *services.RecordService
	ready     Pinger
	snapshots *cache.Loader[[]core.Record]
	caches    *cache.Manager
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	logger    *log.Logger
	loc       *time.Location
	now       func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, records *services.RecordService, ready Pinger, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP, Handler: slog.Default().Handler()})
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		records:   records,
		ready:     ready,
		caches:    cache.NewManager(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(),
		logger:    opts.Logger,
		loc:       opts.Location,
		now:       time.Now,
	}
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)
	s.snapshots = cache.NewLoader(snapshotCapacity, opts.CacheTTL, s.loadSnapshot)
	s.caches.Register(s.snapshots.Cache())
	s.caches.StartCleanup(cleanupInterval)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(s.detector.Middleware(headers.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	limit := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /records", s.handleRecordsPage)
	mux.HandleFunc("GET /records/new", s.handleNewRecord)
	mux.Handle("POST /records", limit(http.HandlerFunc(s.handleCreateRecord)))
	mux.Handle("POST /records/{id}/delete", limit(http.HandlerFunc(s.handleDeleteRecord)))

	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /api/records", s.handleAPIRecords)
	mux.Handle("POST /api/records", limit(http.HandlerFunc(s.handleCreateRecord)))
	mux.Handle("DELETE /api/records/{id}", limit(http.HandlerFunc(s.handleDeleteRecord)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", wantsJSON(r)).Write(w)
}

// loadSnapshot is the cache miss path for the record snapshot.
func (s *Server) loadSnapshot(ctx context.Context, _ string) ([]core.Record, error) {
	records, err := s.records.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Record snapshot loaded", log.FieldCount, len(records))
	return records, nil
}

// snapshot returns the cached record list. Callers must not modify it.
func (s *Server) snapshot(ctx context.Context) ([]core.Record, error) {
	return s.snapshots.Get(ctx, snapshotKey)
}

func (s *Server) invalidateSnapshot() {
	s.snapshots.Invalidate(snapshotKey)
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
