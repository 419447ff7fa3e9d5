package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/imageforge/caption-api/internal/api/shared"
	"github.com/imageforge/caption-api/internal/domain"
	"github.com/imageforge/caption-api/internal/service/auth"
	"github.com/imageforge/caption-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		validator:        validator.New(),
		logger:           logger,
	}
}

// Register handles the /api/auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.Username, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	user.HashedPassword, err = h.passwordVerifier.Hash(user.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Username already exists.")
			return
		}
		h.logger.Error("failed to create user", "error", err, "username", req.Username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.UserToken)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err, "user_token", user.UserToken)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserToken: user.UserToken,
		Token:     token,
	})
}

// Login handles the /api/auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("failed to get user by username", "error", err, "username", req.Username)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.UserToken)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err, "user_token", user.UserToken)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserToken: user.UserToken,
		Token:     token,
	})
}

// ChangeUsername handles the /api/auth/username endpoint.
func (h *AuthHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userToken, ok := shared.GetUserToken(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ChangeUsernameRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.userStore.UpdateUsername(r.Context(), userToken, req.NewUsername); err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameExists):
			shared.RespondWithError(w, r, http.StatusConflict, "Username already exists.")
		case errors.Is(err, store.ErrUserNotFound):
			shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("failed to update username", "error", err, "user_token", userToken)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to change username")
		}
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Username changed successfully."})
}

// ChangePassword handles the /api/auth/password endpoint.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userToken, ok := shared.GetUserToken(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByToken(r.Context(), userToken)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to get user", "error", err, "user_token", userToken)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to change password")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.OldPassword); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Incorrect old password.")
		return
	}

	hashed, err := h.passwordVerifier.Hash(req.NewPassword)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to change password")
		return
	}

	if err := h.userStore.UpdatePassword(r.Context(), userToken, hashed); err != nil {
		h.logger.Error("failed to update password", "error", err, "user_token", userToken)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to change password")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Password changed successfully."})
}
