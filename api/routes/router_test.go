package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kapehan/tindera-backend/internal/inventory"
	"github.com/kapehan/tindera-backend/internal/payments"
	"github.com/kapehan/tindera-backend/internal/products"
	"github.com/kapehan/tindera-backend/internal/recipes"
	"github.com/kapehan/tindera-backend/internal/sales"
	"github.com/kapehan/tindera-backend/pkg/config"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/kapehan/tindera-backend/pkg/enums"
	"github.com/kapehan/tindera-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionsService struct {
	open func(ctx context.Context) (*models.Session, error)
}

func (s stubSessionsService) Open(ctx context.Context) (*models.Session, error) {
	if s.open != nil {
		return s.open(ctx)
	}
	return &models.Session{ID: uuid.New(), Status: enums.SessionStatusOpen}, nil
}

func (stubSessionsService) Close(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return &models.Session{ID: id, Status: enums.SessionStatusClosed}, nil
}

func (stubSessionsService) Current(ctx context.Context) (*models.Session, error) {
	return &models.Session{ID: uuid.New(), Status: enums.SessionStatusOpen}, nil
}

func (stubSessionsService) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return &models.Session{ID: id}, nil
}

func (stubSessionsService) List(ctx context.Context, limit int) ([]models.Session, error) {
	return nil, nil
}

type stubProductsService struct{}

func (stubProductsService) Create(ctx context.Context, input products.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Update(ctx context.Context, id uuid.UUID, input products.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductsService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) List(ctx context.Context) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubProductsService) FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

type stubInventoryService struct{}

func (stubInventoryService) Consume(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID, quantity decimal.Decimal) ([]inventory.BatchDebit, error) {
	panic("unimplemented")
}

func (stubInventoryService) Restock(ctx context.Context, input inventory.RestockInput) (*models.InventoryBatch, error) {
	panic("unimplemented")
}

func (stubInventoryService) CreateIngredient(ctx context.Context, input inventory.CreateIngredientInput) (*models.Ingredient, error) {
	panic("unimplemented")
}

func (stubInventoryService) UpdateIngredient(ctx context.Context, id uuid.UUID, input inventory.UpdateIngredientInput) (*models.Ingredient, error) {
	panic("unimplemented")
}

func (stubInventoryService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	panic("unimplemented")
}

func (stubInventoryService) FindIngredient(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Ingredient, error) {
	panic("unimplemented")
}

func (stubInventoryService) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	return []models.Ingredient{}, nil
}

func (stubInventoryService) ListLowStock(ctx context.Context) ([]models.Ingredient, error) {
	return []models.Ingredient{}, nil
}

type stubRecipesService struct{}

func (stubRecipesService) Resolve(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]recipes.Requirement, error) {
	panic("unimplemented")
}

func (stubRecipesService) ForProduct(ctx context.Context, productID uuid.UUID) ([]models.Recipe, error) {
	return []models.Recipe{}, nil
}

func (stubRecipesService) Replace(ctx context.Context, productID uuid.UUID, lines []recipes.LineInput) ([]models.Recipe, error) {
	panic("unimplemented")
}

type stubRouterSalesService struct{}

func (stubRouterSalesService) Finalize(ctx context.Context, input sales.FinalizeInput) (*models.Sale, error) {
	panic("unimplemented")
}

func (stubRouterSalesService) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	panic("unimplemented")
}

func (stubRouterSalesService) List(ctx context.Context, sessionID *uuid.UUID, limit int) ([]models.Sale, error) {
	return []models.Sale{}, nil
}

func (stubRouterSalesService) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

type stubRouterPaymentsService struct{}

func (stubRouterPaymentsService) Verify(ctx context.Context, input payments.VerifyInput) (*payments.VerificationResult, error) {
	return &payments.VerificationResult{Status: enums.VerificationStatusRejected, RejectionReason: enums.RejectionOCRFailed}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		stubSessionsService{},
		stubProductsService{},
		stubInventoryService{},
		stubRecipesService{},
		stubRouterSalesService{},
		stubRouterPaymentsService{},
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Tindera-Env") != "test" {
		t.Fatalf("env header missing")
	}
}

func TestHealthReadyPingsDependencies(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSessionRoutesWired(t *testing.T) {
	router := newTestRouter(testConfig())

	open := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, open)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for session open got %d", resp.Code)
	}

	current := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, current)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for current session got %d", resp.Code)
	}

	badClose := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/not-a-uuid/close", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, badClose)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed session id got %d", resp.Code)
	}
}

func TestListRoutesWired(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{
		"/api/v1/products",
		"/api/v1/ingredients",
		"/api/v1/ingredients/low-stock",
		"/api/v1/sales",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nothing-here", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
