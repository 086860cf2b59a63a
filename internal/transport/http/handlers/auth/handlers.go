package authhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Profile(ctx context.Context, userID string) (auth.User, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.HandleLogin)
		r.With(middleware.RequireAuth).Post("/change-password", h.HandleChangePassword)
		r.With(middleware.RequireAuth).Get("/me", h.HandleMe)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("login failed")
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload changePasswordRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if payload.NewPassword != "" && payload.NewPassword == payload.CurrentPassword {
		validator.Add("newPassword", "must differ from the current password")
	}
	if validator.Reject(w, reqID) {
		return
	}

	err := h.Service.ChangePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword)
	switch {
	case err == nil:
		api.Success(w, map[string]string{"message": "password changed"}, reqID)
	case errors.Is(err, auth.ErrInvalidPassword):
		api.Fail(w, http.StatusBadRequest, "invalid_password", err.Error(), reqID)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrPasswordUnchanged):
		api.Fail(w, http.StatusBadRequest, "invalid_new_password", err.Error(), reqID)
	case errors.Is(err, auth.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("userId", user.UserID).Msg("change password failed")
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", reqID)
	}
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	profile, err := h.Service.Profile(r.Context(), user.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, profile, reqID)
}
