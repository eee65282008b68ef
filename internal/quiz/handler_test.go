package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-service/internal/auth"
	"quiz-service/internal/models"

	"github.com/gorilla/mux"
)

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    models.PageRequest
		wantErr bool
	}{
		{name: "defaults", query: "", want: models.PageRequest{Page: 0, Size: models.DefaultPageSize}},
		{name: "explicit", query: "page=2&size=5", want: models.PageRequest{Page: 2, Size: 5}},
		{name: "capped size", query: "size=500", want: models.PageRequest{Size: models.MaxPageSize}},
		{name: "sort only", query: "sort=title", want: models.PageRequest{Size: models.DefaultPageSize, Sort: "title"}},
		{name: "sort desc", query: "sort=createdAt,desc", want: models.PageRequest{Size: models.DefaultPageSize, Sort: "createdAt", Desc: true}},
		{name: "sort asc", query: "sort=id,ASC", want: models.PageRequest{Size: models.DefaultPageSize, Sort: "id"}},
		{name: "bad direction", query: "sort=id,up", wantErr: true},
		{name: "negative page", query: "page=-1", wantErr: true},
		{name: "zero size", query: "size=0", wantErr: true},
		{name: "non numeric", query: "page=first", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/quizzes?"+tt.query, nil)
			got, err := parsePageRequest(r)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePageRequest failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parsePageRequest = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: ValidationError{"title": "must not be blank"}, status: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("lookup: %w", ErrQuizNotFound), status: http.StatusNotFound},
		{name: "not owner", err: ErrNotQuizOwner, status: http.StatusForbidden},
		{name: "unknown caller", err: auth.ErrUserNotFound, status: http.StatusUnauthorized},
		{name: "other", err: errors.New("connection reset"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			challenge := rec.Header().Get("WWW-Authenticate")
			if tt.status == http.StatusUnauthorized && challenge != `Basic realm="quiz"` {
				t.Fatalf("401 without Basic challenge, got %q", challenge)
			}
			if tt.status != http.StatusUnauthorized && challenge != "" {
				t.Fatalf("unexpected challenge on %d: %q", rec.Code, challenge)
			}
		})
	}
}

func TestHandlerRequiresCaller(t *testing.T) {
	handler := NewHandler(newFixture(false).service)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quizzes/completed", nil)

	handler.ListCompletions(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="quiz"` {
		t.Fatalf("WWW-Authenticate = %q", got)
	}
}

func TestHandlerGetQuizHidesAnswer(t *testing.T) {
	f := newFixture(false)
	created := f.createQuiz(t, alice.Email, 1)
	handler := NewHandler(f.service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/quizzes/%d", created.ID), nil)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(created.ID)})
	handler.GetQuiz(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	for _, hidden := range []string{"answer", "author", "author_id"} {
		if _, ok := body[hidden]; ok {
			t.Fatalf("response exposes %q: %v", hidden, body)
		}
	}

	rec = httptest.NewRecorder()
	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/quizzes/99", nil), map[string]string{"id": "99"})
	handler.GetQuiz(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing quiz status = %d, want 404", rec.Code)
	}
}

func TestHandlerListQuizzesOverflowingPage(t *testing.T) {
	handler := NewHandler(newFixture(false).service)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quizzes?page=922337203685477581&size=10", nil)

	handler.ListQuizzes(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
	var fields map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if fields["page"] == "" {
		t.Fatalf("expected page error, got %v", fields)
	}
}

func TestHandlerUnknownCallerGetsChallenge(t *testing.T) {
	handler := NewHandler(newFixture(false).service)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/quizzes/completed", nil)
	req = req.WithContext(auth.WithEmail(req.Context(), "ghost@x.com"))

	handler.ListCompletions(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="quiz"` {
		t.Fatalf("WWW-Authenticate = %q", got)
	}
}
