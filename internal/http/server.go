package http

import (
	"context"
	"net/http"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/storage"
)

// Aggregator computes the dashboard summaries.
type Aggregator interface {
	ComputeSummary(ctx context.Context, start, end *core.Date) (core.Summary, error)
	ComputeMonthlySummary(ctx context.Context, year, month *int) (core.MonthlySummary, error)
	ComputePaymentSummary(ctx context.Context) (core.PaymentSummary, error)
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
}

type CategoryService interface {
	ListCategories(ctx context.Context, f core.CategoryFilter) ([]core.Category, error)
	CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error)
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.Session, error)
	CurrentUser(ctx context.Context) (core.User, error)
	Tokens() *auth.Tokens
}

// ActivityReader lists the most recent activity log entries.
type ActivityReader interface {
	ListActivity(ctx context.Context, limit int) ([]storage.Activity, error)
}

// Pinger reports database reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Aggregator   Aggregator
	Transactions TransactionService
	Categories   CategoryService
	Auth         Authenticator
	Activity     ActivityReader
	DB           Pinger
}

// Options tune the server. Zero values select defaults.
type Options struct {
	CookieSecure            bool
	RateLimitPerMinute      int
	LoginRateLimitPerMinute int
	// APILimiter and LoginLimiter replace the default fixed-window limiters
	APILimiter   ratelimit.Limiter
	LoginLimiter ratelimit.Limiter
	Logger       *log.Logger
}

type Server struct {
	http.Server
	deps         Deps
	cookieSecure bool
	logger       *log.Logger
	detector     *security.Detector
	tracer       *trace.Middleware
	apiLimiter   ratelimit.Limiter
	owned        []*ratelimit.FixedWindow
	startedAt    time.Time
}

func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		deps:         deps,
		cookieSecure: opts.CookieSecure,
		logger:       logger.WithComponent(log.ComponentHTTP),
		detector:     security.NewDetector(),
		startedAt:    time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	apiLimiter := opts.APILimiter
	if apiLimiter == nil {
		fw := ratelimit.NewFixedWindow(ratelimit.Config{Limit: opts.RateLimitPerMinute, Window: time.Minute})
		s.owned = append(s.owned, fw)
		apiLimiter = fw
	}
	s.apiLimiter = apiLimiter
	loginLimiter := opts.LoginLimiter
	if loginLimiter == nil {
		limit := opts.LoginRateLimitPerMinute
		if limit <= 0 {
			limit = 5
		}
		fw := ratelimit.NewFixedWindow(ratelimit.Config{Limit: limit, Window: time.Minute})
		s.owned = append(s.owned, fw)
		loginLimiter = fw
	}

	mux := http.NewServeMux()
	authed := auth.Middleware(deps.Auth.Tokens(), func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, err)
	})
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	loginLimited := ratelimit.Middleware(loginLimiter, s.detector.ExtractClientIP, s.handleRateLimited)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("POST /api/auth/login", loginLimited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/auth/me", protect(s.handleMe))

	mux.Handle("GET /api/categories", protect(s.handleListCategories))
	mux.Handle("POST /api/categories", protect(s.handleCreateCategory))

	mux.Handle("GET /api/transactions", protect(s.handleListTransactions))
	mux.Handle("POST /api/transactions", protect(s.handleCreateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", protect(s.handleDeleteTransaction))

	mux.Handle("GET /api/summary", protect(s.handleSummary))
	mux.Handle("GET /api/monthly-summary", protect(s.handleMonthlySummary))
	mux.Handle("GET /api/payment-summary", protect(s.handlePaymentSummary))

	if deps.Activity != nil {
		mux.Handle("GET /api/activity", protect(s.handleListActivity))
	}

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "Not Found").Write(w)
	})

	var handler http.Handler = mux
	handler = ratelimit.Middleware(apiLimiter, s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(s.logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown drains connections and stops the limiters the server created.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Server.Shutdown(ctx)
	for _, fw := range s.owned {
		fw.Stop()
	}
	return err
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.deps.DB.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", log.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
