package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dkravchenko/polyclinic-backend/internal/users"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/db"
	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/security"
	"gorm.io/gorm"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterService handles patient account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        TxRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          TxRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	userRepo := params.UserRepoFactory
	if userRepo == nil {
		userRepo = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    userRepo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "login is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		if _, err := repo.FindByLogin(ctx, login); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "login already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check login")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Login:        login,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			MiddleName:   strings.TrimSpace(req.MiddleName),
			Police:       strings.TrimSpace(req.Police),
			Role:         enums.RolePatient,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "login already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{User: created}, nil
}
