package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/dkravchenko/polyclinic-backend/pkg/auth"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/db/models"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/security"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	byLogin       map[string]*models.User
	lastLoginID   int
	lastLoginTime time.Time
}

func (s *stubUserRepo) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	if u, ok := s.byLogin[login]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	s.lastLoginID = id
	s.lastLoginTime = at
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:       "auth-service-test-secret",
		Issuer:       "PolyclinicServer",
		Audience:     "PolyclinicClient",
		LifetimeDays: 7,
	}
}

func newLoginService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func hashedUser(t *testing.T, id int, login, password, firstName string, role enums.Role) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           id,
		Login:        login,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     "Test",
		Role:         role,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubUserRepo{byLogin: map[string]*models.User{
		"ivanov": hashedUser(t, 5, "ivanov", "secret-password", "Ivan", enums.RoleDoctor),
	}}
	svc := newLoginService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Login: "ivanov", Password: "secret-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Username != "Ivan" {
		t.Errorf("expected username Ivan, got %q", resp.Username)
	}
	if resp.Role != enums.RoleDoctor {
		t.Errorf("expected role %q, got %q", enums.RoleDoctor, resp.Role)
	}
	if repo.lastLoginID != 5 {
		t.Errorf("expected last login recorded for user 5, got %d", repo.lastLoginID)
	}

	// The issued token must resolve back to the same account.
	ident, err := pkgAuth.Authenticate(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
	if ident.UserID != 5 || ident.Role != enums.RoleDoctor || ident.Name != "Ivan" {
		t.Errorf("unexpected identity from issued token: %+v", ident)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubUserRepo{byLogin: map[string]*models.User{
		"ivanov": hashedUser(t, 5, "ivanov", "secret-password", "Ivan", enums.RolePatient),
	}}
	svc := newLoginService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Login: "ivanov", Password: "not-the-password"})
	assertInvalidCredentials(t, err)
	if repo.lastLoginID != 0 {
		t.Error("last login must not be recorded on failure")
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newLoginService(t, &stubUserRepo{byLogin: map[string]*models.User{}})

	_, err := svc.Login(context.Background(), LoginRequest{Login: "ghost", Password: "whatever"})
	assertInvalidCredentials(t, err)
}

func TestLoginEmptyCredentials(t *testing.T) {
	svc := newLoginService(t, &stubUserRepo{byLogin: map[string]*models.User{}})

	for _, req := range []LoginRequest{{}, {Login: "ivanov"}, {Password: "secret"}} {
		_, err := svc.Login(context.Background(), req)
		assertInvalidCredentials(t, err)
	}
}

func assertInvalidCredentials(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidCredentials {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
	if pkgerrors.MetadataFor(typed.Code()).HTTPStatus != 400 {
		t.Error("invalid credentials must map to a 400")
	}
}
