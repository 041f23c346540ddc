package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkravchenko/polyclinic-backend/internal/auth"
	"github.com/dkravchenko/polyclinic-backend/internal/users"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
)

type stubAuthService struct {
	resp *auth.LoginResponse
	err  error
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.resp, s.err
}

type stubRegisterService struct {
	resp *auth.RegisterResponse
	err  error
}

func (s stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return s.resp, s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	handler := AuthLogin(stubAuthService{resp: &auth.LoginResponse{
		AccessToken: "access-token",
		Username:    "Ivan",
		Role:        enums.RolePatient,
	}}, metrics.NewAuthMetrics(nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/Authorization", bytes.NewReader([]byte(`{"login":"ivanov","password":"Secret123!"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" || envelope.Data.Username != "Ivan" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	handler := AuthLogin(stubAuthService{
		err: pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid credentials"),
	}, metrics.NewAuthMetrics(nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/Authorization", bytes.NewReader([]byte(`{"login":"ivanov","password":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, metrics.NewAuthMetrics(nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/Authorization", bytes.NewReader([]byte(`{"login":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRegisterSuccess(t *testing.T) {
	handler := Register(stubRegisterService{resp: &auth.RegisterResponse{
		User: &users.UserDTO{ID: 1, Login: "ivanov", Role: enums.RolePatient},
	}}, metrics.NewAuthMetrics(nil), nil)

	body := `{"login":"ivanov","password":"Secret123!","first_name":"Ivan","last_name":"Ivanov"}`
	req := httptest.NewRequest(http.MethodPost, "/api/Registration", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data auth.RegisterResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.Login != "ivanov" {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestRegisterDuplicateLogin(t *testing.T) {
	handler := Register(stubRegisterService{
		err: pkgerrors.New(pkgerrors.CodeConflict, "login already registered"),
	}, metrics.NewAuthMetrics(nil), nil)

	body := `{"login":"ivanov","password":"Secret123!","first_name":"Ivan","last_name":"Ivanov"}`
	req := httptest.NewRequest(http.MethodPost, "/api/Registration", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
