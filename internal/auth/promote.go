package auth

import (
	"context"
	"errors"

	"github.com/dkravchenko/polyclinic-backend/internal/doctors"
	"github.com/dkravchenko/polyclinic-backend/internal/users"
	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"gorm.io/gorm"
)

type promoteUserRepository interface {
	FindByID(ctx context.Context, id int) (*models.User, error)
	UpdateRole(ctx context.Context, id int, role enums.Role) error
	CreateAdmin(ctx context.Context, userID int) (*models.Admin, error)
}

type promoteDoctorRepository interface {
	FindPostByID(ctx context.Context, id int) (*models.DoctorPost, error)
	Create(ctx context.Context, doctor *models.Doctor) error
}

// PromoteService converts existing accounts into doctors or administrators.
// The user keeps its id and login; only the role tag and the satellite row
// change, so previously issued tokens refer to the same account.
type PromoteService interface {
	PromoteDoctor(ctx context.Context, req PromoteDoctorRequest) (*PromoteResponse, error)
	PromoteAdmin(ctx context.Context, req PromoteAdminRequest) (*PromoteResponse, error)
}

// PromoteServiceParams packages the dependencies for promotion flows.
type PromoteServiceParams struct {
	TxRunner          TxRunner
	UserRepoFactory   func(tx *gorm.DB) promoteUserRepository
	DoctorRepoFactory func(tx *gorm.DB) promoteDoctorRepository
}

type promoteService struct {
	tx         TxRunner
	userRepo   func(tx *gorm.DB) promoteUserRepository
	doctorRepo func(tx *gorm.DB) promoteDoctorRepository
}

// NewPromoteService builds a promotion service with the provided dependencies.
func NewPromoteService(params PromoteServiceParams) (PromoteService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	userRepo := params.UserRepoFactory
	if userRepo == nil {
		userRepo = func(tx *gorm.DB) promoteUserRepository {
			return users.NewRepository(tx)
		}
	}
	doctorRepo := params.DoctorRepoFactory
	if doctorRepo == nil {
		doctorRepo = func(tx *gorm.DB) promoteDoctorRepository {
			return doctors.NewRepository(tx)
		}
	}
	return &promoteService{
		tx:         params.TxRunner,
		userRepo:   userRepo,
		doctorRepo: doctorRepo,
	}, nil
}

func (s *promoteService) PromoteDoctor(ctx context.Context, req PromoteDoctorRequest) (*PromoteResponse, error) {
	var promoted *users.UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)
		doctorRepo := s.doctorRepo(tx)

		user, err := findPromotable(ctx, userRepo, req.UserID)
		if err != nil {
			return err
		}

		post, err := doctorRepo.FindPostByID(ctx, req.PostID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown doctor post")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup post")
		}

		if err := doctorRepo.Create(ctx, &models.Doctor{
			ID:     user.ID,
			Office: req.Office,
			PostID: post.ID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create doctor")
		}

		if err := userRepo.UpdateRole(ctx, user.ID, enums.RoleDoctor); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
		}

		user.Role = enums.RoleDoctor
		promoted = users.FromModel(user)
		promoted.Doctor = &users.DoctorDTO{Office: req.Office, Post: post.Name, PostID: post.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PromoteResponse{User: promoted}, nil
}

func (s *promoteService) PromoteAdmin(ctx context.Context, req PromoteAdminRequest) (*PromoteResponse, error) {
	var promoted *users.UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)

		user, err := findPromotable(ctx, userRepo, req.UserID)
		if err != nil {
			return err
		}

		admin, err := userRepo.CreateAdmin(ctx, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
		}

		if err := userRepo.UpdateRole(ctx, user.ID, enums.RoleAdmin); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
		}

		user.Role = enums.RoleAdmin
		promoted = users.FromModel(user)
		promoted.Admin = &users.AdminDTO{Since: admin.CreatedAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PromoteResponse{User: promoted}, nil
}

func findPromotable(ctx context.Context, repo promoteUserRepository, userID int) (*models.User, error) {
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.Role != enums.RolePatient {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has an elevated role")
	}
	return user, nil
}
