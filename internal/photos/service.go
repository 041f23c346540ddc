package photos

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/storage/fsstore"
	"gorm.io/gorm"
)

// UploadResponse returns the public URL of the stored photo.
type UploadResponse struct {
	URL string `json:"url"`
}

// Service manages profile photo upload and retrieval.
type Service interface {
	Upload(ctx context.Context, userID int, data []byte) (*UploadResponse, error)
	Fetch(ctx context.Context, userID int, locator string) ([]byte, error)
}

type photoStore interface {
	Save(ctx context.Context, userID int, data []byte) (string, error)
	Load(ctx context.Context, userID int, locator string) ([]byte, error)
	Delete(ctx context.Context, userID int, locator string) error
}

type userRepository interface {
	FindByID(ctx context.Context, id int) (*models.User, error)
	UpdatePhotoURL(ctx context.Context, id int, url string) error
}

// ServiceParams bundles the dependencies required to build a photos service.
type ServiceParams struct {
	Store     photoStore
	UserRepo  userRepository
	PublicURL string
	Logger    *logger.Logger
}

type service struct {
	store     photoStore
	users     userRepository
	publicURL string
	logg      *logger.Logger
}

// NewService constructs a photos service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("photo store is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.PublicURL == "" {
		return nil, fmt.Errorf("public url is required")
	}
	return &service{
		store:     params.Store,
		users:     params.UserRepo,
		publicURL: params.PublicURL,
		logg:      params.Logger,
	}, nil
}

func (s *service) Upload(ctx context.Context, userID int, data []byte) (*UploadResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	oldLocator := locatorFromURL(user.PhotoURL)

	locator, err := s.store.Save(ctx, userID, data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store photo")
	}

	publicURL := fmt.Sprintf("%s/api/User/%d/Photo.jpg?uri=%s", s.publicURL, userID, locator)
	if err := s.users.UpdatePhotoURL(ctx, userID, publicURL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist photo url")
	}

	// The previous object is unreachable once the URL is replaced.
	if oldLocator != "" && oldLocator != locator {
		if err := s.store.Delete(ctx, userID, oldLocator); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "locator", oldLocator), "photo.cleanup_failed")
		}
	}

	return &UploadResponse{URL: publicURL}, nil
}

func (s *service) Fetch(ctx context.Context, userID int, locator string) ([]byte, error) {
	data, err := s.store.Load(ctx, userID, locator)
	if err != nil {
		if errors.Is(err, fsstore.ErrNotFound) || errors.Is(err, fsstore.ErrInvalidLocator) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load photo")
	}
	return data, nil
}

func locatorFromURL(raw *string) string {
	if raw == nil || *raw == "" {
		return ""
	}
	parsed, err := url.Parse(*raw)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("uri")
}
