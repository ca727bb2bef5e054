package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvalledor/stocktrace-backend/api/routes"
	"github.com/mvalledor/stocktrace-backend/internal/identity"
	"github.com/mvalledor/stocktrace-backend/internal/inventory"
	"github.com/mvalledor/stocktrace-backend/internal/principals"
	"github.com/mvalledor/stocktrace-backend/internal/receipts"
	"github.com/mvalledor/stocktrace-backend/internal/sales"
	"github.com/mvalledor/stocktrace-backend/internal/scope"
	"github.com/mvalledor/stocktrace-backend/internal/staff"
	"github.com/mvalledor/stocktrace-backend/pkg/auth/session"
	"github.com/mvalledor/stocktrace-backend/pkg/config"
	"github.com/mvalledor/stocktrace-backend/pkg/db"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
	"github.com/mvalledor/stocktrace-backend/pkg/metrics"
	"github.com/mvalledor/stocktrace-backend/pkg/migrate"
	"github.com/mvalledor/stocktrace-backend/pkg/redis"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "stocktrace-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "stocktrace-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	provider, err := identity.NewCredentialProvider(dbClient.DB(), cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create credential provider", err)
		os.Exit(1)
	}

	principalsRepo := principals.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	receiptsRepo := receipts.NewRepository(dbClient.DB())

	resolver, err := scope.NewResolver(principalsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create scope resolver", err)
		os.Exit(1)
	}

	hub := watch.NewHub()
	registry := prometheus.NewRegistry()
	salesMetrics := metrics.NewSalesMetrics(registry)

	identityService, err := identity.NewService(identity.ServiceParams{
		Provider:       provider,
		PrincipalRepo:  principalsRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Hub:            hub,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventoryRepo, resolver, hub)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	receiptsService, err := receipts.NewService(receiptsRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts service", err)
		os.Exit(1)
	}

	salesCoordinator, err := sales.NewCoordinator(sales.CoordinatorParams{
		ReceiptsRepo:  receiptsRepo,
		InventoryRepo: inventoryRepo,
		Resolver:      resolver,
		Hub:           hub,
		Logger:        logg,
		Metrics:       salesMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sales coordinator", err)
		os.Exit(1)
	}

	staffService, err := staff.NewService(staff.ServiceParams{
		Identity: identityService,
		Roster:   principalsRepo,
		Hub:      hub,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			SessionManager:   sessionManager,
			IdentityService:  identityService,
			InventoryService: inventoryService,
			ReceiptsService:  receiptsService,
			SalesCoordinator: salesCoordinator,
			StaffService:     staffService,
			Hub:              hub,
			MetricsRegistry:  registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
