package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kapehan/tindera-backend/api/routes"
	"github.com/kapehan/tindera-backend/internal/inventory"
	"github.com/kapehan/tindera-backend/internal/payments"
	"github.com/kapehan/tindera-backend/internal/products"
	"github.com/kapehan/tindera-backend/internal/recipes"
	"github.com/kapehan/tindera-backend/internal/sales"
	"github.com/kapehan/tindera-backend/internal/sessions"
	"github.com/kapehan/tindera-backend/pkg/config"
	"github.com/kapehan/tindera-backend/pkg/db"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/metrics"
	"github.com/kapehan/tindera-backend/pkg/migrate"
	"github.com/kapehan/tindera-backend/pkg/ocr"
	"github.com/kapehan/tindera-backend/pkg/outbox"
	"github.com/kapehan/tindera-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	ocrClient, err := ocr.NewClient(cfg.OCR.BaseURL, cfg.OCR.APIKey, ocr.WithTimeout(cfg.OCR.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create ocr client", err)
		os.Exit(1)
	}

	saleMetrics := metrics.NewSaleMetrics(prometheus.DefaultRegisterer)
	verificationMetrics := metrics.NewVerificationMetrics(prometheus.DefaultRegisterer)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	sessionsRepo := sessions.NewRepository(dbClient.DB())
	sessionsService, err := sessions.NewService(sessionsRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sessions service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	recipesService, err := recipes.NewService(recipes.NewRepository(dbClient.DB()), dbClient, productsService, inventoryService)
	if err != nil {
		logg.Error(context.Background(), "failed to create recipes service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(sales.ServiceParams{
		Repo:      sales.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Sessions:  sessionsRepo,
		Products:  productsService,
		Recipes:   recipesService,
		Inventory: inventoryService,
		Outbox:    outboxService,
		Metrics:   saleMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(ocrClient, salesService, cfg.Wallet, verificationMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionsService,
			productsService,
			inventoryService,
			recipesService,
			salesService,
			paymentsService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down api server", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
