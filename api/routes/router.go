package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kapehan/tindera-backend/api/controllers"
	"github.com/kapehan/tindera-backend/api/middleware"
	"github.com/kapehan/tindera-backend/internal/inventory"
	"github.com/kapehan/tindera-backend/internal/payments"
	"github.com/kapehan/tindera-backend/internal/products"
	"github.com/kapehan/tindera-backend/internal/recipes"
	"github.com/kapehan/tindera-backend/internal/sales"
	"github.com/kapehan/tindera-backend/internal/sessions"
	"github.com/kapehan/tindera-backend/pkg/config"
	"github.com/kapehan/tindera-backend/pkg/db"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionsService sessions.Service,
	productsService products.Service,
	inventoryService inventory.Service,
	recipesService recipes.Service,
	salesService sales.Service,
	paymentsService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", controllers.SessionOpen(sessionsService, logg))
			r.Get("/", controllers.SessionList(sessionsService, logg))
			r.Get("/current", controllers.SessionCurrent(sessionsService, logg))
			r.Post("/{sessionId}/close", controllers.SessionClose(sessionsService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(productsService, logg))
			r.Get("/", controllers.ProductList(productsService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productsService, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(productsService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(productsService, logg))
			r.Get("/{productId}/recipe", controllers.RecipeForProduct(recipesService, logg))
			r.Put("/{productId}/recipe", controllers.RecipeReplace(recipesService, logg))
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Post("/", controllers.IngredientCreate(inventoryService, logg))
			r.Get("/", controllers.IngredientList(inventoryService, logg))
			r.Get("/low-stock", controllers.IngredientLowStock(inventoryService, logg))
			r.Get("/{ingredientId}", controllers.IngredientDetail(inventoryService, logg))
			r.Patch("/{ingredientId}", controllers.IngredientUpdate(inventoryService, logg))
			r.Post("/{ingredientId}/restock", controllers.IngredientRestock(inventoryService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.SaleFinalize(salesService, logg))
			r.Get("/", controllers.SaleList(salesService, logg))
			r.Get("/{saleId}", controllers.SaleDetail(salesService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(middleware.VerifyRateLimit(cfg.VerifyLimit, redisClient, logg)).
				Post("/verify", controllers.PaymentVerify(paymentsService, cfg.Wallet, logg))
		})
	})

	return r
}
