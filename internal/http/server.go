package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"keepmoney/internal/cache"
	"keepmoney/internal/core"
	applog "keepmoney/internal/log"
	"keepmoney/internal/middleware/ratelimit"
	"keepmoney/internal/middleware/security"
	"keepmoney/internal/middleware/trace"
	"keepmoney/internal/services"
)

// Ledger is the part of the ledger service the API exposes.
type Ledger interface {
	Ping(ctx context.Context) error

	RegisterUser(ctx context.Context, username, password, name, surname, email string) (core.User, error)
	Login(ctx context.Context, username, password string) (core.User, error)
	User(ctx context.Context, username string) (core.User, error)

	Categories(ctx context.Context) ([]core.Category, error)
	AddCategory(ctx context.Context, c core.Category) error

	RecordIncome(ctx context.Context, in core.Income) (int64, error)
	RemoveIncome(ctx context.Context, username string, id int64) error
	Incomes(ctx context.Context, username string) ([]core.IncomeRow, error)

	RecordPurchase(ctx context.Context, username string, item core.Item, at time.Time) (int64, int64, error)
	RemovePurchase(ctx context.Context, username string, itemID int64) error
	Purchases(ctx context.Context, username string, listID int64, limit int) ([]core.ItemRow, error)

	CreateWishList(ctx context.Context, username string, list core.WishList, items []core.Item) (int64, error)
	UpdateWishListItem(ctx context.Context, username string, itemID int64, price core.Money, amount int) error
	ConfirmWishList(ctx context.Context, username string, listID int64) error
	DeleteWishList(ctx context.Context, username string, listID int64) error
	WishLists(ctx context.Context, username string, confirmed bool) ([]core.WishListSummary, error)
	WishListItems(ctx context.Context, username string, listID int64) ([]core.WishListItem, error)

	Balance(ctx context.Context, username string) (core.Balance, error)
	Counts(ctx context.Context, username string) (services.Counts, error)
}

type Options struct {
	TokenSecret []byte
	TokenTTL    time.Duration
	CacheTTL    time.Duration
	Logger      *applog.Logger
	// AuthLimit bounds register and login attempts per client IP.
	AuthLimit ratelimit.Config
}

type Server struct {
	http.Server
	ledger       Ledger
	tokens       *TokenIssuer
	balances     *cache.BalanceCache
	cacheManager *cache.Manager
	authLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	clientIP     *security.ClientIPResolver
	events       *applog.StructuredLogger
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:       ledger,
		tokens:       NewTokenIssuer(opts.TokenSecret, opts.TokenTTL),
		balances:     cache.NewBalanceCache(1000, opts.CacheTTL),
		cacheManager: cache.NewManager(),
		authLimiter:  ratelimit.NewLimiter(opts.AuthLimit),
		clientIP:     security.NewClientIPResolver(),
		events:       applog.NewStructuredLogger(logger.WithComponent(applog.ComponentLedger)),
		now:          time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.clientIP.ClientIP)

	s.cacheManager.Register(s.balances)
	s.cacheManager.StartCleanup(10 * time.Minute)

	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = applog.RequestIDMiddleware(trace.FromRequest)(h)
	h = applog.Middleware(logger)(h)
	h = s.tracer.Middleware(h)
	h = headers.Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	limited := s.authLimiter.Middleware(s.clientIP.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusTooManyRequests).Error("too many attempts, retry later").Write(w)
	})

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /api/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/login", limited(http.HandlerFunc(s.handleLogin)))

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/categories", s.requireToken(s.handleCreateCategory))

	mux.HandleFunc("GET /api/users/{username}", s.requireUser(s.handleUser))

	mux.HandleFunc("GET /api/users/{username}/incomes", s.requireUser(s.handleIncomes))
	mux.HandleFunc("POST /api/users/{username}/incomes", s.requireUser(s.handleCreateIncome))
	mux.HandleFunc("DELETE /api/users/{username}/incomes/{id}", s.requireUser(s.handleDeleteIncome))

	mux.HandleFunc("GET /api/users/{username}/purchases", s.requireUser(s.handlePurchases))
	mux.HandleFunc("POST /api/users/{username}/purchases", s.requireUser(s.handleCreatePurchase))
	mux.HandleFunc("DELETE /api/users/{username}/purchases/{itemID}", s.requireUser(s.handleDeletePurchase))

	mux.HandleFunc("GET /api/users/{username}/wishlists", s.requireUser(s.handleWishLists))
	mux.HandleFunc("POST /api/users/{username}/wishlists", s.requireUser(s.handleCreateWishList))
	mux.HandleFunc("GET /api/users/{username}/wishlists/{id}/items", s.requireUser(s.handleWishListItems))
	mux.HandleFunc("POST /api/users/{username}/wishlists/{id}/confirm", s.requireUser(s.handleConfirmWishList))
	mux.HandleFunc("DELETE /api/users/{username}/wishlists/{id}", s.requireUser(s.handleDeleteWishList))
	mux.HandleFunc("PATCH /api/users/{username}/items/{id}", s.requireUser(s.handleUpdateItem))

	mux.HandleFunc("GET /api/users/{username}/balance", s.requireUser(s.handleBalance))
	mux.HandleFunc("GET /api/users/{username}/counts", s.requireUser(s.handleCounts))
}

// Shutdown stops the background cleanups and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.authLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		NewJSONResponse().Status(http.StatusServiceUnavailable).Error("database unavailable").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

// ledgerChanged drops the cached balance of username and logs the write.
func (s *Server) ledgerChanged(ctx context.Context, op, username string, cents int64) {
	s.balances.Invalidate(username)
	s.events.LogLedgerChange(ctx, op, username, cents)
}
