package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkravchenko/polyclinic-backend/internal/auth"
	"github.com/dkravchenko/polyclinic-backend/internal/doctors"
	"github.com/dkravchenko/polyclinic-backend/internal/photos"
	"github.com/dkravchenko/polyclinic-backend/internal/users"
	pkgAuth "github.com/dkravchenko/polyclinic-backend/pkg/auth"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
	"github.com/dkravchenko/polyclinic-backend/pkg/redis"
	"github.com/dkravchenko/polyclinic-backend/pkg/storage/fsstore"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if req.Login == "ivanov" && req.Password == "Secret123!" {
		return &auth.LoginResponse{AccessToken: "token", Username: "Ivan", Role: enums.RolePatient}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid credentials")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{User: &users.UserDTO{ID: 1, Login: req.Login, Role: enums.RolePatient}}, nil
}

type stubPromoteService struct{}

func (stubPromoteService) PromoteDoctor(ctx context.Context, req auth.PromoteDoctorRequest) (*auth.PromoteResponse, error) {
	return &auth.PromoteResponse{User: &users.UserDTO{ID: req.UserID, Role: enums.RoleDoctor}}, nil
}

func (stubPromoteService) PromoteAdmin(ctx context.Context, req auth.PromoteAdminRequest) (*auth.PromoteResponse, error) {
	return &auth.PromoteResponse{User: &users.UserDTO{ID: req.UserID, Role: enums.RoleAdmin}}, nil
}

type stubUsersService struct{}

func (stubUsersService) Profile(ctx context.Context, userID int) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Login: "ivanov", Role: enums.RolePatient}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID int, req users.UpdateProfileRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Login: req.Login, Role: enums.RolePatient}, nil
}

func (stubUsersService) List(ctx context.Context, req users.ListRequest) ([]users.UserDTO, error) {
	return []users.UserDTO{}, nil
}

type stubPhotosService struct{}

func (stubPhotosService) Upload(ctx context.Context, userID int, data []byte) (*photos.UploadResponse, error) {
	return &photos.UploadResponse{URL: "http://localhost:5000/api/User/1/Photo.jpg?uri=x"}, nil
}

func (stubPhotosService) Fetch(ctx context.Context, userID int, locator string) ([]byte, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:       "secret",
			Issuer:       "PolyclinicServer",
			Audience:     "PolyclinicClient",
			LifetimeDays: 1,
		},
		Storage: config.StorageConfig{RootDir: "resources", MaxUploadMB: 1},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		(*fsstore.Store)(nil),
		nil,
		metrics.NewAuthMetrics(nil),
		stubAuthService{},
		stubRegisterService{},
		stubPromoteService{},
		stubUsersService{},
		stubPhotosService{},
		(*doctors.Repository)(nil),
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: 7,
		Name:   "Ivan",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/ping"},
		{http.MethodGet, "/api/User"},
		{http.MethodGet, "/api/Users"},
		{http.MethodPatch, "/api/User/Photo"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token got %d", route.method, route.path, resp.Code)
		}
	}
}

func TestPrivateRoutesSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/User", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RolePatient))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPromotionRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"user_id":7,"post_id":2,"office":"214"}`

	for _, role := range []enums.Role{enums.RolePatient, enums.RoleDoctor} {
		req := httptest.NewRequest(http.MethodPost, "/api/Registration/Doctor", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, role))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Errorf("role %s: expected 403 got %d", role, resp.Code)
		}
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/Registration/Doctor", strings.NewReader(body))
	admin.Header.Set("Content-Type", "application/json")
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(testConfig())

	good := httptest.NewRequest(http.MethodPost, "/api/Authorization", strings.NewReader(`{"login":"ivanov","password":"Secret123!"}`))
	good.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, good)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid login got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "access_token") {
		t.Errorf("expected access token in response, got %s", resp.Body.String())
	}

	bad := httptest.NewRequest(http.MethodPost, "/api/Authorization", strings.NewReader(`{"login":"ivanov","password":"wrong"}`))
	bad.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, bad)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad credentials got %d", resp.Code)
	}
}

func TestRegistrationEndpoint(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"login":"ivanov","password":"Secret123!","first_name":"Ivan","last_name":"Ivanov"}`

	req := httptest.NewRequest(http.MethodPost, "/api/Registration", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for registration got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPhotoFetchIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/User/9/Photo.jpg?uri=deadbeefdeadbeefdeadbeefdeadbeef", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from stub photo service got %d", resp.Code)
	}
}

func TestPublicPing(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(testConfig())

	live := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, live)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}

	// The nil redis and storage clients must surface as degraded
	// dependencies, not a panic.
	ready := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, ready)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for degraded readiness got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"database":"up"`) {
		t.Errorf("expected database up in %s", body)
	}
	if !strings.Contains(body, `"redis":"down"`) {
		t.Errorf("expected redis down in %s", body)
	}
}
