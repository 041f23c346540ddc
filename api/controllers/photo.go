package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dkravchenko/polyclinic-backend/api/middleware"
	"github.com/dkravchenko/polyclinic-backend/api/responses"
	"github.com/dkravchenko/polyclinic-backend/api/validators"
	"github.com/dkravchenko/polyclinic-backend/internal/photos"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
)

const photoFormField = "photo"

// PhotoUpload accepts a multipart profile photo for the authenticated user
// and returns the public URL it is served from.
func PhotoUpload(svc photos.Service, maxSize int64, authMetrics *metrics.AuthMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo upload too large or malformed"))
			return
		}

		file, header, err := r.FormFile(photoFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "photo file is required"))
			return
		}
		defer file.Close()

		if !photoContentTypeAllowed(header.Header.Get("Content-Type")) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "photo must be a jpeg image"))
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read photo payload"))
			return
		}
		if len(data) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "photo file is empty"))
			return
		}

		result, err := svc.Upload(r.Context(), userID, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		authMetrics.IncPhotoUpload()
		responses.WriteSuccess(w, result)
	}
}

// PhotoFetch streams a stored profile photo. The route is public; the
// locator in the uri query parameter is unguessable.
func PhotoFetch(svc photos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "photo service unavailable"))
			return
		}

		userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
		if err != nil || userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found"))
			return
		}

		locator := validators.SanitizeString(r.URL.Query().Get("uri"), 64)
		if locator == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found"))
			return
		}

		data, err := svc.Fetch(r.Context(), userID, locator)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil && logg != nil {
			ctx := logg.WithField(r.Context(), "bytes", len(data))
			logg.Warn(ctx, "photo.stream_interrupted")
		}
	}
}

func photoContentTypeAllowed(header string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(header, ";", 2)[0]))
	switch mediaType {
	case "", "image/jpeg", "image/jpg", "application/octet-stream":
		return true
	}
	return false
}
