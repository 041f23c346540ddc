package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"gorm.io/gorm"
)

// UpdateProfileRequest is the payload accepted by PUT /api/User.
type UpdateProfileRequest struct {
	Login      string `json:"login" validate:"required,min=3,max=64"`
	FirstName  string `json:"first_name" validate:"required,max=64"`
	LastName   string `json:"last_name" validate:"required,max=64"`
	MiddleName string `json:"middle_name" validate:"max=64"`
	Police     string `json:"police" validate:"max=32"`
}

// ListRequest narrows the user directory listing.
type ListRequest struct {
	Search string
	Role   string
}

// Service defines the behavior needed by the user controllers.
type Service interface {
	Profile(ctx context.Context, userID int) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*UserDTO, error)
	List(ctx context.Context, req ListRequest) ([]UserDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, dto UpdateProfileDTO) error
	List(ctx context.Context, filter ListFilter) ([]models.User, error)
	FindAdminByUserID(ctx context.Context, userID int) (*models.Admin, error)
	ListAdminsByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Admin, error)
}

type doctorRepository interface {
	FindByUserID(ctx context.Context, userID int) (*models.Doctor, error)
	ListByUserIDs(ctx context.Context, userIDs []int) (map[int]models.Doctor, error)
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	UserRepo   userRepository
	DoctorRepo doctorRepository
}

type service struct {
	users   userRepository
	doctors doctorRepository
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.DoctorRepo == nil {
		return nil, fmt.Errorf("doctor repository is required")
	}
	return &service{users: params.UserRepo, doctors: params.DoctorRepo}, nil
}

func (s *service) Profile(ctx context.Context, userID int) (*UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	dto := FromModel(user)
	if err := s.embedRoleDetails(ctx, dto); err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*UserDTO, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "login is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if login != user.Login {
		if existing, err := s.users.FindByLogin(ctx, login); err == nil && existing.ID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "login already taken")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check login")
		}
	}

	if err := s.users.UpdateProfile(ctx, userID, UpdateProfileDTO{
		Login:      login,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		MiddleName: strings.TrimSpace(req.MiddleName),
		Police:     strings.TrimSpace(req.Police),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}

	return s.Profile(ctx, userID)
}

func (s *service) List(ctx context.Context, req ListRequest) ([]UserDTO, error) {
	filter := ListFilter{Search: strings.TrimSpace(req.Search)}
	if role := strings.TrimSpace(req.Role); role != "" {
		parsed, err := enums.ParseRole(role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role filter").WithDetails(map[string]any{"role": role})
		}
		filter.Role = parsed
	}

	found, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	var doctorIDs, adminIDs []int
	for _, user := range found {
		switch user.Role {
		case enums.RoleDoctor:
			doctorIDs = append(doctorIDs, user.ID)
		case enums.RoleAdmin:
			adminIDs = append(adminIDs, user.ID)
		}
	}

	doctorsByID, err := s.doctors.ListByUserIDs(ctx, doctorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load doctors")
	}
	adminsByID, err := s.users.ListAdminsByUserIDs(ctx, adminIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admins")
	}

	result := make([]UserDTO, 0, len(found))
	for i := range found {
		dto := FromModel(&found[i])
		if doctor, ok := doctorsByID[dto.ID]; ok {
			dto.Doctor = &DoctorDTO{Office: doctor.Office, Post: doctor.Post.Name, PostID: doctor.PostID}
		}
		if admin, ok := adminsByID[dto.ID]; ok {
			dto.Admin = &AdminDTO{Since: admin.CreatedAt}
		}
		result = append(result, *dto)
	}
	return result, nil
}

func (s *service) embedRoleDetails(ctx context.Context, dto *UserDTO) error {
	switch dto.Role {
	case enums.RoleDoctor:
		doctor, err := s.doctors.FindByUserID(ctx, dto.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load doctor")
		}
		dto.Doctor = &DoctorDTO{Office: doctor.Office, Post: doctor.Post.Name, PostID: doctor.PostID}
	case enums.RoleAdmin:
		admin, err := s.users.FindAdminByUserID(ctx, dto.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admin")
		}
		dto.Admin = &AdminDTO{Since: admin.CreatedAt}
	}
	return nil
}
