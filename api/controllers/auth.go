package controllers

import (
	"net/http"

	"github.com/dkravchenko/polyclinic-backend/api/responses"
	"github.com/dkravchenko/polyclinic-backend/api/validators"
	"github.com/dkravchenko/polyclinic-backend/internal/auth"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, authMetrics *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInvalidCredentials {
				authMetrics.IncLogin("failure")
			} else {
				authMetrics.IncLogin("error")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		authMetrics.IncLogin("success")
		responses.WriteSuccess(w, result)
	}
}
