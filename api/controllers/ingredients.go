package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kapehan/tindera-backend/api/responses"
	"github.com/kapehan/tindera-backend/api/validators"
	"github.com/kapehan/tindera-backend/internal/inventory"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
)

type createIngredientRequest struct {
	Name              string          `json:"name" validate:"required"`
	Unit              string          `json:"unit" validate:"required"`
	Cost              decimal.Decimal `json:"cost"`
	LowStockThreshold decimal.Decimal `json:"lowStockThreshold"`
	OpeningStock      decimal.Decimal `json:"openingStock"`
}

type updateIngredientRequest struct {
	Name              *string          `json:"name,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"lowStockThreshold,omitempty"`
}

type restockRequest struct {
	Quantity   decimal.Decimal  `json:"quantity" validate:"required"`
	UnitCost   *decimal.Decimal `json:"unitCost,omitempty"`
	ReceivedAt *time.Time       `json:"receivedAt,omitempty"`
}

func IngredientCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload createIngredientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredient, err := svc.CreateIngredient(r.Context(), inventory.CreateIngredientInput{
			Name:              payload.Name,
			Unit:              payload.Unit,
			Cost:              payload.Cost,
			LowStockThreshold: payload.LowStockThreshold,
			OpeningStock:      payload.OpeningStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ingredient)
	}
}

func IngredientUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := parseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateIngredientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredient, err := svc.UpdateIngredient(r.Context(), id, inventory.UpdateIngredientInput{
			Name:              payload.Name,
			Unit:              payload.Unit,
			Cost:              payload.Cost,
			LowStockThreshold: payload.LowStockThreshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ingredient)
	}
}

func IngredientDetail(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := parseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredient, err := svc.GetIngredient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ingredient)
	}
}

func IngredientList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		listed, err := svc.ListIngredients(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}

func IngredientLowStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		listed, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}

func IngredientRestock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := parseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.Restock(r.Context(), inventory.RestockInput{
			IngredientID: id,
			Quantity:     payload.Quantity,
			UnitCost:     payload.UnitCost,
			ReceivedAt:   payload.ReceivedAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}
