package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dkravchenko/polyclinic-backend/api/middleware"
	"github.com/dkravchenko/polyclinic-backend/internal/photos"
	pkgerrors "github.com/dkravchenko/polyclinic-backend/pkg/errors"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
)

type stubPhotosService struct {
	uploaded []byte
	url      string
	data     []byte
	err      error
}

func (s *stubPhotosService) Upload(ctx context.Context, userID int, data []byte) (*photos.UploadResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploaded = data
	return &photos.UploadResponse{URL: s.url}, nil
}

func (s *stubPhotosService) Fetch(ctx context.Context, userID int, locator string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func multipartPhotoRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="photo.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/User/Photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPhotoUploadSuccess(t *testing.T) {
	svc := &stubPhotosService{url: "http://localhost:5000/api/User/9/Photo.jpg?uri=abc"}
	handler := PhotoUpload(svc, 1<<20, metrics.NewAuthMetrics(nil), nil)

	req := multipartPhotoRequest(t, []byte("jpeg-bytes"))
	req = req.WithContext(middleware.WithUserID(req.Context(), 9))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Equal(svc.uploaded, []byte("jpeg-bytes")) {
		t.Fatalf("service received wrong payload %q", svc.uploaded)
	}
}

func TestPhotoUploadRequiresIdentity(t *testing.T) {
	handler := PhotoUpload(&stubPhotosService{}, 1<<20, metrics.NewAuthMetrics(nil), nil)

	req := multipartPhotoRequest(t, []byte("jpeg-bytes"))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPhotoUploadRejectsMissingFile(t *testing.T) {
	handler := PhotoUpload(&stubPhotosService{}, 1<<20, metrics.NewAuthMetrics(nil), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/User/Photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = req.WithContext(middleware.WithUserID(req.Context(), 9))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPhotoFetchStreamsImage(t *testing.T) {
	svc := &stubPhotosService{data: []byte("jpeg-bytes")}
	handler := PhotoFetch(svc, nil)

	router := chi.NewRouter()
	router.Get("/api/User/{userId}/Photo.jpg", handler)

	req := httptest.NewRequest(http.MethodGet, "/api/User/9/Photo.jpg?uri=deadbeefdeadbeefdeadbeefdeadbeef", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg got %s", got)
	}
	if !bytes.Equal(resp.Body.Bytes(), []byte("jpeg-bytes")) {
		t.Fatalf("unexpected body %q", resp.Body.Bytes())
	}
}

func TestPhotoFetchUnknownLocator(t *testing.T) {
	svc := &stubPhotosService{err: pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")}
	handler := PhotoFetch(svc, nil)

	router := chi.NewRouter()
	router.Get("/api/User/{userId}/Photo.jpg", handler)

	req := httptest.NewRequest(http.MethodGet, "/api/User/9/Photo.jpg?uri=zzz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
