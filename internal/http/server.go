package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"foodwaste/internal/chat"
	"foodwaste/internal/core"
	"foodwaste/internal/importer"
	"foodwaste/internal/log"
	"foodwaste/internal/metrics"
	"foodwaste/internal/middleware/ratelimit"
	"foodwaste/internal/middleware/security"
	"foodwaste/internal/middleware/trace"
	appweb "foodwaste/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// WasteService is the part of services.WasteService the handlers use.
type WasteService interface {
	importer.Adder
	Entries(ctx context.Context) ([]core.WasteEntry, error)
	ListEntries(ctx context.Context, req core.PageRequest) (core.Page, error)
	GetEntry(ctx context.Context, id string) (core.WasteEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	GetStats(ctx context.Context, period string) (core.AggregateStats, error)
	Charts(ctx context.Context, period string) (core.ChartData, error)
	ChatReply(ctx context.Context, query string) (chat.Reply, error)
	Advise(ctx context.Context, e core.WasteEntry) string
	Ping(ctx context.Context) error
}

// Options tunes the server; zero values select defaults.
type Options struct {
	Logger             *log.Logger
	Metrics            *metrics.Metrics
	RateLimitPerMinute int
	AllowedOrigins     []string
	ChatMode           string
}

type Server struct {
	http.Server
	svc       WasteService
	templates *template.Template
	limiter   *ratelimit.Limiter
	metrics   *metrics.Metrics
	logger    *log.Logger
	chatMode  string
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc WasteService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		svc:      svc,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		metrics:  opts.Metrics,
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		chatMode: opts.ChatMode,
		started:  time.Now(),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	s.Handler = s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	ips := security.NewIPExtractor()
	tracer := trace.NewMiddleware(
		func(c trace.Completion) {
			access := log.NewStructuredLogger(s.logger.With(log.FieldRequestID, c.RequestID))
			access.LogHTTPEnd(c.Request.Context(), c.Request, c.Status, c.Duration.Milliseconds(), ips.ClientIP(c.Request))
		},
		func(c trace.Completion) {
			s.metrics.ObserveHTTP(routePattern(c.Request), c.Request.Method, c.Status, c.Duration)
		},
	)

	r := chi.NewRouter()
	r.Use(tracer.Middleware)
	r.Use(log.Middleware(s.logger, trace.GetRequestID))
	r.Use(chimiddleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", trace.HeaderRequestID, "HX-Request", "HX-Target", "HX-Current-URL", "HX-Trigger"},
		ExposedHeaders: []string{trace.HeaderRequestID, "HX-Trigger"},
		MaxAge:         300,
	}))
	r.Use(s.limiter.Middleware(ips.ClientIP, s.handleRateLimited))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.With(security.StaticAssetMiddleware(3600)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/", s.handleDashboard)
	r.Get("/ui/stats", s.handleStatsPartial)
	r.Get("/ui/entries", s.handleEntriesPartial)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/charts", s.handleCharts)
		r.Post("/chat", s.handleChat)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateEntry)
			r.Post("/import", s.handleImportEntries)
			r.Get("/export", s.handleExportEntries)
			r.Get("/{id}", s.handleGetEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
		})
	})

	return r
}

// routePattern returns the matched chi pattern so metrics labels stay
// bounded; unmatched requests share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Shutdown gracefully shuts down the server and the limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
