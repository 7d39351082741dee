package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/eventmanager/server/internal/api/problem"
	"github.com/eventmanager/server/internal/auth"
	"github.com/eventmanager/server/internal/metrics"
)

// AuthorizationHandler serves the login, refresh, and logout endpoints.
type AuthorizationHandler struct {
	Service  *auth.Service
	Env      string
	validate *validator.Validate
}

func NewAuthorizationHandler(service *auth.Service, env string) *AuthorizationHandler {
	v := validator.New()
	_ = v.RegisterValidation("password", validPassword)
	return &AuthorizationHandler{Service: service, Env: env, validate: v}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthorizationHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	pair, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			problem.Unauthorized(w, r, "Invalid credentials", h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, tokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthorizationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	pair, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
			problem.Unauthorized(w, r, "Invalid or expired refresh token", h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, tokenResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthorizationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	if err := h.Service.Logout(r.Context(), req.RefreshToken); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			problem.Unauthorized(w, r, "Invalid or expired refresh token", h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validPassword requires at least one lowercase letter, one uppercase letter,
// and one digit. Length is checked separately with min/max tags.
func validPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
