package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kapehan/tindera-backend/api/responses"
	"github.com/kapehan/tindera-backend/api/validators"
	"github.com/kapehan/tindera-backend/internal/recipes"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
)

type replaceRecipeRequest struct {
	Lines []recipeLineRequest `json:"lines" validate:"omitempty,dive"`
}

type recipeLineRequest struct {
	IngredientID uuid.UUID       `json:"ingredientId" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
}

func RecipeForProduct(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.ForProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// RecipeReplace swaps a product's recipe wholesale. An empty lines array
// clears the recipe, turning the product into a non-inventory item.
func RecipeReplace(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload replaceRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]recipes.LineInput, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			lines = append(lines, recipes.LineInput{
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
			})
		}

		replaced, err := svc.Replace(r.Context(), productID, lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, replaced)
	}
}
