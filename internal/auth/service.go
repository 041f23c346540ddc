package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/dkravchenko/polyclinic-backend/pkg/auth"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the authorization controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type userRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
}

type service struct {
	users  userRepository
	jwtCfg config.JWTConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo  userRepository
	JWTConfig config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{
		users:  params.UserRepo,
		jwtCfg: params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Login, req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.FirstName,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		Username:    user.FirstName,
		Role:        user.Role,
	}, nil
}

// authenticate never reveals whether the login or the password was wrong.
func (s *service) authenticate(ctx context.Context, login, password string) (*models.User, error) {
	input := strings.TrimSpace(login)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}

	user, err := s.users.FindByLogin(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return user, nil
}
