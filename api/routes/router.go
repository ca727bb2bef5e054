package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvalledor/stocktrace-backend/api/controllers"
	"github.com/mvalledor/stocktrace-backend/api/middleware"
	"github.com/mvalledor/stocktrace-backend/internal/identity"
	"github.com/mvalledor/stocktrace-backend/internal/inventory"
	"github.com/mvalledor/stocktrace-backend/internal/receipts"
	"github.com/mvalledor/stocktrace-backend/internal/sales"
	"github.com/mvalledor/stocktrace-backend/internal/staff"
	"github.com/mvalledor/stocktrace-backend/pkg/auth/session"
	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/db"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
	"github.com/mvalledor/stocktrace-backend/pkg/redis"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               db.Pinger
	Redis            *redis.Client
	SessionManager   sessionManager
	IdentityService  identity.Service
	InventoryService inventory.Service
	ReceiptsService  receipts.Service
	SalesCoordinator sales.Coordinator
	StaffService     staff.Service
	Hub              *watch.Hub
	MetricsRegistry  *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.IdentityService, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, p.Redis, logg)).Post("/signup", controllers.AuthSignUp(p.IdentityService, logg))
		r.Post("/logout", controllers.AuthLogout(p.IdentityService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Get("/auth/session", controllers.SessionRestore(p.IdentityService, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(p.InventoryService, logg))
			r.Post("/", controllers.InventoryAdd(p.InventoryService, logg))
			r.Delete("/{itemId}", controllers.InventoryRemove(p.InventoryService, logg))
			r.Get("/watch", controllers.WatchCollection(p.Hub, watch.CollectionInventory, logg))
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Get("/", controllers.ReceiptsList(p.ReceiptsService, logg))
			r.Get("/watch", controllers.WatchCollection(p.Hub, watch.CollectionReceipts, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.SalesRecord(p.SalesCoordinator, logg))
			r.Delete("/{receiptId}", controllers.SalesReverse(p.SalesCoordinator, logg))
			r.Post("/fix-up", controllers.SalesFixUp(p.SalesCoordinator, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireAdminTier(logg))
			r.Get("/", controllers.StaffList(p.StaffService, logg))
			r.Post("/", controllers.StaffCreate(p.StaffService, logg))
			r.Patch("/{staffId}/account-type", controllers.StaffUpdateAccountType(p.StaffService, logg))
			r.Patch("/{staffId}/profile", controllers.StaffUpdateProfile(p.StaffService, logg))
			r.Get("/watch", controllers.WatchCollection(p.Hub, watch.CollectionPrincipals, logg))
		})
	})

	return r
}
