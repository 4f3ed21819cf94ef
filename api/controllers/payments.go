package controllers

import (
	"io"
	"net/http"

	"github.com/kapehan/tindera-backend/api/responses"
	"github.com/kapehan/tindera-backend/internal/payments"
	"github.com/kapehan/tindera-backend/pkg/config"
	pkgerrors "github.com/kapehan/tindera-backend/pkg/errors"
	"github.com/kapehan/tindera-backend/pkg/logger"
)

// PaymentVerify accepts a multipart receipt upload under the "image" field
// and runs it through the verification pipeline. A rejected receipt is still
// a successful HTTP exchange; the outcome is carried in the response body.
func PaymentVerify(svc payments.Service, cfg config.WalletConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		maxBytes := cfg.MaxImageBytes
		if maxBytes <= 0 {
			maxBytes = 10 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required"))
			return
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read image file"))
			return
		}

		result, err := svc.Verify(r.Context(), payments.VerifyInput{
			Image:       image,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
