package controllers

import (
	"net/http"

	"github.com/shopit-dev/shopit-backend/api/responses"
	"github.com/shopit-dev/shopit-backend/api/validators"
	"github.com/shopit-dev/shopit-backend/internal/checkout"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/metrics"
)

// Checkout converts the buyer's cart into a paid order.
func Checkout(svc checkout.Service, httpMetrics *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkout.Request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), buyerID, body)
		if err != nil {
			httpMetrics.IncCheckout("failure")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		httpMetrics.IncCheckout("success")
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
