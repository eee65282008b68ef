package auth

import (
	"errors"
	"log"
	"net/http"

	"quiz-service/pkg/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,looseemail"`
	Password string `json:"password" validate:"notblank,min=5"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fields := httpx.Validate(req); fields != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, fields)
		return
	}

	if _, err := h.service.Register(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			httpx.WriteError(w, http.StatusBadRequest, "User with email "+req.Email+" already exists")
			return
		}
		log.Printf("Error registering %s: %v", req.Email, err)
		httpx.WriteError(w, http.StatusInternalServerError, "request failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fields := httpx.Validate(req); fields != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, fields)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			WriteUnauthorized(w, "Invalid credentials")
			return
		}
		log.Printf("Error logging in %s: %v", req.Email, err)
		httpx.WriteError(w, http.StatusInternalServerError, "request failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}
