package controllers

import (
	"net/http"

	"github.com/mvalledor/stocktrace-backend/api/middleware"
	"github.com/mvalledor/stocktrace-backend/api/responses"
	"github.com/mvalledor/stocktrace-backend/internal/receipts"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
)

// ReceiptsList returns the actor's receipt projection.
func ReceiptsList(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipts service unavailable"))
			return
		}

		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session context"))
			return
		}

		records, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
