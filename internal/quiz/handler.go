package quiz

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"quiz-service/internal/auth"
	"quiz-service/internal/models"
	"quiz-service/pkg/httpx"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CreateQuizRequest struct {
	Title   string   `json:"title" validate:"notblank"`
	Text    string   `json:"text" validate:"notblank"`
	Options []string `json:"options" validate:"min=2"`
	Answer  []int    `json:"answer"`
}

type SolveRequest struct {
	Answer []int `json:"answer"`
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var req CreateQuizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fields := httpx.Validate(req); fields != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, fields)
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), NewQuiz{
		Title:   req.Title,
		Text:    req.Text,
		Options: req.Options,
		Answer:  req.Answer,
	}, email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, quiz.ToDTO())
}

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := quizID(w, r)
	if !ok {
		return
	}

	quiz, found, err := h.service.GetQuiz(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		httpx.WriteError(w, http.StatusNotFound, "quiz not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, quiz.ToDTO())
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListQuizzes(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, models.MapPage(page, models.Quiz.ToDTO))
}

func (h *Handler) SolveQuiz(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	id, ok := quizID(w, r)
	if !ok {
		return
	}

	var req SolveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	feedback, err := h.service.SolveQuiz(r.Context(), id, req.Answer, email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, feedback)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	id, ok := quizID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteQuiz(r.Context(), id, email); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	req, err := parsePageRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListCompletions(r.Context(), email, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, page)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr ValidationError
	switch {
	case errors.As(err, &validationErr):
		httpx.WriteJSON(w, http.StatusBadRequest, validationErr)
	case errors.Is(err, ErrQuizNotFound):
		httpx.WriteError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, ErrNotQuizOwner):
		httpx.WriteError(w, http.StatusForbidden, "You can only delete your own quizzes")
	case errors.Is(err, auth.ErrUserNotFound):
		auth.WriteUnauthorized(w, "caller is not a registered user")
	default:
		log.Printf("Quiz request failed: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, "request failed")
	}
}

func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w, "Unauthorized")
		return "", false
	}
	return email, true
}

func quizID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		httpx.WriteError(w, http.StatusNotFound, "quiz not found")
		return 0, false
	}
	return uint(id), true
}

// parsePageRequest reads page, size and sort query parameters. sort follows
// the "property[,asc|desc]" form.
func parsePageRequest(r *http.Request) (models.PageRequest, error) {
	page, err := parseIntParam(r, "page", 0)
	if err != nil {
		return models.PageRequest{}, err
	}
	size, err := parseIntParam(r, "size", models.DefaultPageSize)
	if err != nil {
		return models.PageRequest{}, err
	}
	if page < 0 {
		return models.PageRequest{}, fmt.Errorf("page must not be negative")
	}
	if size < 1 {
		return models.PageRequest{}, fmt.Errorf("size must be positive")
	}
	if size > models.MaxPageSize {
		size = models.MaxPageSize
	}

	req := models.PageRequest{Page: page, Size: size}

	sortParam := strings.TrimSpace(r.URL.Query().Get("sort"))
	if sortParam != "" {
		parts := strings.Split(sortParam, ",")
		if len(parts) > 2 {
			return models.PageRequest{}, fmt.Errorf("invalid sort %q", sortParam)
		}
		req.Sort = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "asc":
			case "desc":
				req.Desc = true
			default:
				return models.PageRequest{}, fmt.Errorf("invalid sort direction %q", parts[1])
			}
		}
	}
	return req, nil
}

func parseIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return value, nil
}
