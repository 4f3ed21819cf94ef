package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kapehan/tindera-backend/api/responses"
	"github.com/kapehan/tindera-backend/api/validators"
	salesvc "github.com/kapehan/tindera-backend/internal/sales"
	"github.com/kapehan/tindera-backend/pkg/enums"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
)

type finalizeSaleRequest struct {
	SessionID     uuid.UUID              `json:"sessionId" validate:"required"`
	Items         []finalizeItemRequest  `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string                 `json:"paymentMethod" validate:"required"`
	Wallet        *walletTransferRequest `json:"wallet,omitempty"`
}

type finalizeItemRequest struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type walletTransferRequest struct {
	ReferenceCode        string    `json:"referenceCode" validate:"required"`
	TransactionTimestamp time.Time `json:"transactionTimestamp" validate:"required"`
	Confidence           float64   `json:"extractedConfidence,omitempty"`
	ReceiptImageURL      *string   `json:"receiptImageUrl,omitempty"`
}

func (req finalizeSaleRequest) toInput() (salesvc.FinalizeInput, error) {
	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return salesvc.FinalizeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
	}

	input := salesvc.FinalizeInput{
		SessionID:     req.SessionID,
		PaymentMethod: method,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, salesvc.FinalizeItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	if req.Wallet != nil {
		input.Wallet = &salesvc.WalletData{
			ReferenceCode:        strings.ToUpper(strings.TrimSpace(req.Wallet.ReferenceCode)),
			TransactionTimestamp: req.Wallet.TransactionTimestamp,
			Confidence:           req.Wallet.Confidence,
			ReceiptImageURL:      req.Wallet.ReceiptImageURL,
		}
	}
	return input, nil
}

// SaleFinalize commits a sale: one transaction covering the sale row, its
// items, and every FIFO batch debit the cart's recipes imply.
func SaleFinalize(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload finalizeSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Finalize(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func SaleDetail(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func SaleList(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var sessionID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("sessionId")); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sessionId"))
				return
			}
			sessionID = &parsed
		}

		listed, err := svc.List(r.Context(), sessionID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listed)
	}
}
