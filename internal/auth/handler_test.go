package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterHandler(t *testing.T) {
	service := newTestService(newFakeUserStore())
	handler := NewHandler(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"a@x.com","password":"secret1"}`))
	handler.Register(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"a@x.com","password":"secret1"}`))
	handler.Register(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Fatalf("unexpected duplicate body: %s", rec.Body.String())
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	handler := NewHandler(newTestService(newFakeUserStore()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"not-an-email","password":"abc"}`))
	handler.Register(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var fields map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if fields["email"] == "" || fields["password"] == "" {
		t.Fatalf("expected email and password errors, got %v", fields)
	}
}

func TestLoginHandler(t *testing.T) {
	service := newTestService(newFakeUserStore())
	if _, err := service.Register(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	handler := NewHandler(service)

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@x.com","password":"secret1"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var body loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("unexpected login body %q: %v", rec.Body.String(), err)
	}

	rec = httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@x.com","password":"nope!"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}
}

func TestMiddleware(t *testing.T) {
	service := newTestService(newFakeUserStore())
	if _, err := service.Register(context.Background(), "a@x.com", "secret1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, err := service.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	var seen string
	protected := Middleware(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = EmailFromContext(r.Context())
	}))

	tests := []struct {
		name      string
		setup     func(r *http.Request)
		wantCode  int
		wantEmail string
	}{
		{name: "missing header", setup: func(r *http.Request) {}, wantCode: http.StatusUnauthorized},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, wantCode: http.StatusOK, wantEmail: "a@x.com"},
		{name: "bad bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }, wantCode: http.StatusUnauthorized},
		{name: "basic", setup: func(r *http.Request) { r.SetBasicAuth("a@x.com", "secret1") }, wantCode: http.StatusOK, wantEmail: "a@x.com"},
		{name: "basic wrong password", setup: func(r *http.Request) { r.SetBasicAuth("a@x.com", "nope") }, wantCode: http.StatusUnauthorized},
		{name: "unknown scheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "Digest abc") }, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if seen != tt.wantEmail {
				t.Fatalf("email in context = %q, want %q", seen, tt.wantEmail)
			}
			if tt.wantCode == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatalf("missing WWW-Authenticate header")
			}
		})
	}
}
