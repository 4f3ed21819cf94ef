package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kapehan/tindera-backend/internal/inventory"
	"github.com/kapehan/tindera-backend/internal/payments"
	"github.com/kapehan/tindera-backend/internal/recipes"
	"github.com/kapehan/tindera-backend/internal/sessions"
	dbpkg "github.com/kapehan/tindera-backend/pkg/db"
	"github.com/kapehan/tindera-backend/pkg/db/models"
	"github.com/kapehan/tindera-backend/pkg/enums"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
	"github.com/kapehan/tindera-backend/pkg/metrics"
	"github.com/kapehan/tindera-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionFinder interface {
	WithTx(tx *gorm.DB) sessions.Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
}

type productFinder interface {
	FindProduct(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error)
}

type recipeResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]recipes.Requirement, error)
}

type inventoryLedger interface {
	Consume(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID, quantity decimal.Decimal) ([]inventory.BatchDebit, error)
	FindIngredient(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Ingredient, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the commit boundary for point-of-sale transactions. Finalize
// either records the sale, its line items, and every batch debit it implies,
// or records nothing.
type Service interface {
	Finalize(ctx context.Context, input FinalizeInput) (*models.Sale, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, sessionID *uuid.UUID, limit int) ([]models.Sale, error)
	ExistsByReferenceCode(ctx context.Context, code string) (bool, error)
}

// ServiceParams collects the collaborators Finalize orchestrates.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Sessions  sessionFinder
	Products  productFinder
	Recipes   recipeResolver
	Inventory inventoryLedger
	Outbox    outboxPublisher
	Metrics   *metrics.SaleMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	sessions  sessionFinder
	products  productFinder
	recipes   recipeResolver
	inventory inventoryLedger
	outbox    outboxPublisher
	metrics   *metrics.SaleMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the sale finalization service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("sales: repository is required")
	}
	if params.Tx == nil {
		return nil, errors.New("sales: tx runner is required")
	}
	if params.Sessions == nil {
		return nil, errors.New("sales: session finder is required")
	}
	if params.Products == nil {
		return nil, errors.New("sales: product finder is required")
	}
	if params.Recipes == nil {
		return nil, errors.New("sales: recipe resolver is required")
	}
	if params.Inventory == nil {
		return nil, errors.New("sales: inventory ledger is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("sales: outbox publisher is required")
	}
	if params.Logger == nil {
		return nil, errors.New("sales: logger is required")
	}
	if params.Metrics == nil {
		params.Metrics = metrics.NewSaleMetrics(nil)
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		sessions:  params.Sessions,
		products:  params.Products,
		recipes:   params.Recipes,
		inventory: params.Inventory,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// Finalize validates the cart, prices it, writes the sale and its items, and
// consumes recipe ingredients FIFO, all inside one transaction. Wallet
// transfers re-check the reference code at commit time; the partial unique
// index backstops the race two concurrent submissions would otherwise win
// together.
func (s *service) Finalize(ctx context.Context, input FinalizeInput) (*models.Sale, error) {
	started := s.now()
	sale, err := s.finalize(ctx, input)
	s.metrics.ObserveDuration(string(input.PaymentMethod), s.now().Sub(started))
	if err != nil {
		s.metrics.IncOutcome(string(input.PaymentMethod), "aborted")
		return nil, err
	}
	s.metrics.IncOutcome(string(input.PaymentMethod), "committed")
	return sale, nil
}

func (s *service) finalize(ctx context.Context, input FinalizeInput) (*models.Sale, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	ctx = s.logg.WithSessionID(ctx, input.SessionID.String())

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// The session precondition reads from the same snapshot the
		// writes commit against.
		session, err := s.sessions.WithTx(tx).FindByID(ctx, input.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
			}
			return fmt.Errorf("find session: %w", err)
		}
		if session.Status != enums.SessionStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "session is not open")
		}

		if input.Wallet != nil {
			exists, err := repo.ExistsByReferenceCode(ctx, input.Wallet.ReferenceCode)
			if err != nil {
				return fmt.Errorf("reference duplicate check: %w", err)
			}
			if exists {
				return pkgerrors.New(pkgerrors.CodeDuplicateReference, "reference code was already used").
					WithDetails(map[string]any{"reference_code": payments.MaskReferenceCode(input.Wallet.ReferenceCode)})
			}
		}

		items, total, err := s.priceItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}

		sale = s.buildSale(input, total)
		if _, err := repo.CreateSale(ctx, sale); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_sales_reference_code") {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicateReference, err, "reference code was already used")
			}
			return fmt.Errorf("create sale: %w", err)
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := repo.CreateSaleItems(ctx, items); err != nil {
			return fmt.Errorf("create sale items: %w", err)
		}
		sale.Items = items

		consumed, err := s.consumeRecipes(ctx, tx, input.Items)
		if err != nil {
			return err
		}
		if err := s.emitLowStock(ctx, tx, consumed); err != nil {
			return err
		}
		return s.emitFinalized(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithSaleID(ctx, sale.ID.String())
	s.logg.Info(ctx, "sale finalized")
	return sale, nil
}

func (s *service) validate(input FinalizeInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if input.PaymentMethod == enums.PaymentMethodWalletTransfer {
		if input.Wallet == nil || input.Wallet.ReferenceCode == "" || input.Wallet.TransactionTimestamp.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "wallet transfer requires verified receipt data")
		}
	}
	return nil
}

func (s *service) priceItems(ctx context.Context, tx *gorm.DB, inputs []FinalizeItemInput) ([]models.SaleItem, decimal.Decimal, error) {
	items := make([]models.SaleItem, 0, len(inputs))
	total := decimal.Zero
	for _, input := range inputs {
		product, err := s.products.FindProduct(ctx, tx, input.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		unitPrice := product.Price
		if input.UnitPrice != nil && input.UnitPrice.Sign() > 0 {
			unitPrice = *input.UnitPrice
		}
		items = append(items, models.SaleItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: unitPrice,
		})
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))))
	}
	return items, total, nil
}

func (s *service) buildSale(input FinalizeInput, total decimal.Decimal) *models.Sale {
	now := s.now().UTC()
	sale := &models.Sale{
		ID:            uuid.New(),
		SessionID:     input.SessionID,
		TotalAmount:   total,
		SoldAt:        now,
		PaymentMethod: input.PaymentMethod,
	}
	if input.Wallet != nil {
		reference := input.Wallet.ReferenceCode
		timestamp := input.Wallet.TransactionTimestamp.UTC()
		status := enums.VerificationStatusConfirmed
		sale.ReferenceCode = &reference
		sale.TransactionTimestampUTC = &timestamp
		sale.VerifiedAtUTC = &now
		sale.VerificationStatus = &status
		sale.ReceiptImageURL = input.Wallet.ReceiptImageURL
	}
	return sale
}

// consumeRecipes drains FIFO batches for every ingredient the cart implies.
// Returns the distinct ingredient ids touched, in first-seen order.
func (s *service) consumeRecipes(ctx context.Context, tx *gorm.DB, inputs []FinalizeItemInput) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var consumed []uuid.UUID
	for _, input := range inputs {
		requirements, err := s.recipes.Resolve(ctx, tx, input.ProductID)
		if err != nil {
			return nil, err
		}
		for _, requirement := range requirements {
			needed := requirement.Quantity.Mul(decimal.NewFromInt(int64(input.Quantity)))
			if _, err := s.inventory.Consume(ctx, tx, requirement.IngredientID, needed); err != nil {
				return nil, err
			}
			if !seen[requirement.IngredientID] {
				seen[requirement.IngredientID] = true
				consumed = append(consumed, requirement.IngredientID)
			}
		}
	}
	return consumed, nil
}

func (s *service) emitLowStock(ctx context.Context, tx *gorm.DB, consumed []uuid.UUID) error {
	for _, ingredientID := range consumed {
		ingredient, err := s.inventory.FindIngredient(ctx, tx, ingredientID)
		if err != nil {
			return err
		}
		if ingredient.LowStockThreshold.Sign() <= 0 {
			continue
		}
		if ingredient.CurrentStock.Cmp(ingredient.LowStockThreshold) > 0 {
			continue
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventIngredientLowStock,
			AggregateType: enums.AggregateIngredient,
			AggregateID:   ingredient.ID,
			Version:       1,
			Data: outbox.IngredientLowStockEvent{
				IngredientID: ingredient.ID,
				Name:         ingredient.Name,
				CurrentStock: ingredient.CurrentStock,
				Threshold:    ingredient.LowStockThreshold,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return fmt.Errorf("emit low stock event: %w", err)
		}
	}
	return nil
}

func (s *service) emitFinalized(ctx context.Context, tx *gorm.DB, sale *models.Sale) error {
	items := make([]outbox.SaleFinalizedItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, outbox.SaleFinalizedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventSaleFinalized,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Version:       1,
		Data: outbox.SaleFinalizedEvent{
			SaleID:        sale.ID,
			SessionID:     sale.SessionID,
			TotalAmount:   sale.TotalAmount,
			PaymentMethod: string(sale.PaymentMethod),
			SoldAt:        sale.SoldAt,
			Items:         items,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return fmt.Errorf("emit sale finalized event: %w", err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return sale, nil
}

func (s *service) List(ctx context.Context, sessionID *uuid.UUID, limit int) ([]models.Sale, error) {
	return s.repo.List(ctx, sessionID, limit)
}

// ExistsByReferenceCode is the duplicate-detection query verification shares
// with finalization; both must see the same rows.
func (s *service) ExistsByReferenceCode(ctx context.Context, code string) (bool, error) {
	return s.repo.ExistsByReferenceCode(ctx, code)
}
