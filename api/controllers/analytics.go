package controllers

import (
	"net/http"

	"github.com/shopit-dev/shopit-backend/api/responses"
	"github.com/shopit-dev/shopit-backend/internal/analytics"
	pkgerrors "github.com/shopit-dev/shopit-backend/pkg/errors"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
)

// SellerAnalytics serves the seller dashboard aggregates.
func SellerAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		sellerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.SellerSummary(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
