package controllers

import (
	"context"
	"net/http"

	"github.com/dkravchenko/polyclinic-backend/api/responses"
	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
)

type doctorPostLister interface {
	ListPosts(ctx context.Context) ([]models.DoctorPost, error)
}

type doctorPostDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DoctorPostsList returns the catalog of doctor posts, used when
// promoting an account to a doctor.
func DoctorPostsList(repo doctorPostLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "doctors repository unavailable"))
			return
		}

		posts, err := repo.ListPosts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list doctor posts"))
			return
		}

		result := make([]doctorPostDTO, 0, len(posts))
		for _, post := range posts {
			result = append(result, doctorPostDTO{ID: post.ID, Name: post.Name})
		}
		responses.WriteSuccess(w, result)
	}
}
