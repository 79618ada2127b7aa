package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tracker/internal/ledger"
	"tracker/internal/log"
	"tracker/internal/middleware/ratelimit"
	"tracker/internal/middleware/security"
)

type Server struct {
	http.Server
	store   *ledger.Store
	loc     *time.Location
	now     func() time.Time
	logger  *log.Logger
	limiter *ratelimit.Limiter
	started time.Time
}

type Option func(*Server)

// WithLocation sets the timezone used to bucket days and months.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) { s.loc = loc }
}

// WithClock overrides the server clock used when a request gives no "now".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithWriteRateLimit caps mutating requests per client per minute. Zero
// disables the limit.
func WithWriteRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: perMinute})
		}
	}
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, store *ledger.Store, opts ...Option) *Server {
	s := &Server{
		store:   store,
		loc:     time.Local,
		now:     time.Now,
		logger:  log.Discard(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", s.handleListTransactions)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Get("/categories", s.handleListCategories)
		r.Get("/summary", s.handleSummary)
		r.Get("/periods/{period}", s.handlePeriod)
		r.Get("/series", s.handleSeries)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/export.json", s.handleExport)
		r.Get("/export.csv", s.handleExport)
		r.Post("/calc", s.handleCalc)

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware(clientKey, func(w http.ResponseWriter, r *http.Request) {
					log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
						log.FieldClientIP, clientKey(r))
					TooManyRequestsError().Write(w)
				}))
			}
			r.Post("/transactions", s.handleCreateTransaction)
			r.Put("/transactions/{id}", s.handleUpdateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)
			r.Post("/categories/{kind}", s.handleAddCategory)
			r.Delete("/categories/{kind}/{name}", s.handleDeleteCategory)
			r.Post("/import", s.handleImport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such route").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})
	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}

// clientKey identifies the caller for rate limiting. RealIP has already
// rewritten RemoteAddr from trusted forwarding headers.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":       "ok",
		"timestamp":    s.now().UTC().Format(time.RFC3339),
		"uptime":       time.Since(s.started).Round(time.Second).String(),
		"transactions": s.store.Len(),
	}).Write(w)
}
