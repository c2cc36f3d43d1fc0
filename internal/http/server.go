package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	flog "finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

// requestTimeout bounds every API call, store round trips included.
const requestTimeout = 7 * time.Second

// Status is the backend report served by /api/status.
type Status struct {
	Mode     string `json:"mode"`
	Fallback bool   `json:"fallback"`
	Lenient  bool   `json:"lenient"`
}

type Options struct {
	RateLimitPerMinute int
	Logger             *flog.Logger
	Status             Status
	// Readiness is probed by /readyz. It should bypass any read cache;
	// the ledger is used when nil.
	Readiness store.CategoryStore
}

type Server struct {
	http.Server
	ledger store.Store
	ready  store.CategoryStore
	editor *services.Editor
	status Status
	logger *flog.StructuredLogger
	start  time.Time

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware over ledger. ledger is expected to
// already carry event publishing and caching.
func NewServer(addr string, ledger store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = flog.New(flog.DefaultConfig())
	}
	logger = logger.WithComponent(flog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		ledger:      ledger,
		ready:       opts.Readiness,
		editor:      services.NewEditor(ledger),
		status:      opts.Status,
		logger:      flog.NewStructuredLogger(logger),
		start:       time.Now(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    detector,
		tracer:      trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	if s.ready == nil {
		s.ready = ledger
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/home", s.handleHome)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/budget", s.handleBudget)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/new", s.handleNewDraft)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleEditDraft)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("PUT /api/users", s.handleSaveUsers)

	limitWrites := s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
	}, http.MethodPost, http.MethodPut, http.MethodDelete)

	var h http.Handler = mux
	h = withTimeout(requestTimeout)(h)
	h = limitWrites(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = flog.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(h)
	h = flog.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
