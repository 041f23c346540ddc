package controllers

import (
	"net/http"

	"github.com/dkravchenko/polyclinic-backend/api/responses"
	"github.com/dkravchenko/polyclinic-backend/api/validators"
	"github.com/dkravchenko/polyclinic-backend/internal/auth"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
)

// Register handles creating a new patient account.
func Register(svc auth.RegisterService, authMetrics *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		authMetrics.IncRegistration(string(enums.RolePatient))
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RegisterDoctor converts an existing account into a doctor. Admin only.
func RegisterDoctor(svc auth.PromoteService, authMetrics *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "promote service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.PromoteDoctorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PromoteDoctor(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		authMetrics.IncRegistration(string(enums.RoleDoctor))
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RegisterAdmin converts an existing account into an administrator. Admin only.
func RegisterAdmin(svc auth.PromoteService, authMetrics *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "promote service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.PromoteAdminRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PromoteAdmin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		authMetrics.IncRegistration(string(enums.RoleAdmin))
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
