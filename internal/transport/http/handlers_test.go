package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streamz/internal/application/catalog"
	"streamz/internal/domain/account"
	"streamz/internal/domain/video"
)

type stubCatalog struct {
	uploaded  *catalog.UploadInput
	record    *video.Video
	deleteErr error
}

func (s *stubCatalog) Upload(_ context.Context, in catalog.UploadInput) (*video.Video, error) {
	data, _ := io.ReadAll(in.Body)
	in.Body = bytes.NewReader(data)
	s.uploaded = &in
	return &video.Video{ID: "vid-1", Title: in.Title, MimeType: "video/mp4", CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
}

func (s *stubCatalog) Videos(_ context.Context) ([]video.Video, error) {
	if s.record == nil {
		return nil, nil
	}
	return []video.Video{*s.record}, nil
}

func (s *stubCatalog) VideoByID(_ context.Context, _ string) (*video.Video, error) {
	if s.record == nil {
		return nil, catalog.ErrNotFound
	}
	return s.record, nil
}

func (s *stubCatalog) UpdateVideo(_ context.Context, _ string, _ catalog.UpdateInput) (*video.Video, error) {
	if s.record == nil {
		return nil, catalog.ErrNotFound
	}
	return s.record, nil
}

func (s *stubCatalog) DeleteVideo(_ context.Context, _ string) error { return s.deleteErr }

func (s *stubCatalog) CreateGenre(_ context.Context, name, slug, _ string) (*video.Genre, error) {
	return &video.Genre{ID: "g-1", Name: name, Slug: slug}, nil
}

func (s *stubCatalog) Genres(_ context.Context) ([]video.Genre, error) { return nil, nil }

func (s *stubCatalog) RecordView(_ context.Context, _, _ string, _ int) error { return nil }

type stubAuth struct {
	user *account.User
}

func (s *stubAuth) Register(_ context.Context, email, name, _ string) (*account.User, error) {
	if s.user != nil && s.user.Email == email {
		return nil, account.ErrEmailTaken
	}
	return &account.User{ID: "u-1", Email: email, Name: name, Active: true, CreatedAt: time.Now()}, nil
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (string, *account.User, error) {
	return "token-1", s.user, nil
}

func (s *stubAuth) Authenticate(_ context.Context, _ string) (*account.User, error) {
	return s.user, nil
}

func (s *stubAuth) Logout(_ string) {}

func (s *stubAuth) Users(_ context.Context) ([]account.User, error) { return nil, nil }

func (s *stubAuth) SetUserActive(_ context.Context, _ string, _ bool) error { return nil }

func newTestServer(catalogStub *stubCatalog, authStub *stubAuth) *httptest.Server {
	logger := log.New(io.Discard, "", 0)
	handler := NewHandler(&stubRelay{}, catalogStub, authStub, logger)
	return httptest.NewServer(NewRouter(handler, "secret", logger))
}

func TestHealth(t *testing.T) {
	server := newTestServer(&stubCatalog{}, &stubAuth{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf("unexpected health payload: %v", body)
	}
}

func TestAdminRoutes_RequireBearerToken(t *testing.T) {
	server := newTestServer(&stubCatalog{}, &stubAuth{})
	defer server.Close()

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/videos/vid-1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/api/videos/vid-1", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/api/videos/vid-1", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", resp.StatusCode)
	}
}

func TestUploadVideo_MultipartForm(t *testing.T) {
	catalogStub := &stubCatalog{}
	server := newTestServer(catalogStub, &stubAuth{})
	defer server.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("title", "Trailer")
	_ = form.WriteField("description", "A test clip")
	part, _ := form.CreateFormFile("video", "trailer.mp4")
	part.Write([]byte("video-bytes"))
	form.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/videos", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if catalogStub.uploaded == nil {
		t.Fatalf("upload never reached the catalog service")
	}
	if catalogStub.uploaded.Title != "Trailer" || catalogStub.uploaded.Filename != "trailer.mp4" {
		t.Fatalf("unexpected upload input: %+v", catalogStub.uploaded)
	}
}

func TestGetVideo_NotFound(t *testing.T) {
	server := newTestServer(&stubCatalog{}, &stubAuth{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/videos/missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error == "" {
		t.Fatalf("expected machine-readable error field")
	}
}

func TestRegister_Conflict(t *testing.T) {
	authStub := &stubAuth{user: &account.User{ID: "u-1", Email: "a@b.co", Active: true}}
	server := newTestServer(&stubCatalog{}, authStub)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"email":"a@b.co","name":"Alex","password":"long enough pw"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}
