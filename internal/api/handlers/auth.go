package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopworks/storefront/internal/api/middleware"
	"github.com/shopworks/storefront/internal/errors"
	"github.com/shopworks/storefront/internal/models"
	service "github.com/shopworks/storefront/internal/services"
	"github.com/shopworks/storefront/internal/utils"
	"github.com/shopworks/storefront/internal/utils/response"
)

type AuthHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		auth, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			logger.Error("Registration failed", slog.String("email", req.Email), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("User registered", slog.Int64("userID", auth.User.ID))
		response.Success(w, http.StatusCreated, auth)
	}
}

func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			logger.Error("Login failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		if !result.Success {

			if result.RetryAfter > 0 {
				response.WriteJson(w, http.StatusTooManyRequests, result)

				return
			}

			response.WriteJson(w, http.StatusUnauthorized, result)

			return
		}

		logger.Info("User logged in", slog.Int64("userID", result.User.ID))
		response.Success(w, http.StatusOK, result)
	}
}

func (h *AuthHandler) RequestPasswordReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.PasswordResetRequest

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.RequestPasswordReset(r.Context(), &req); err != nil {
			response.Error(w, err)

			return
		}

		// Same answer whether the email exists or not.
		response.Success(w, http.StatusOK, map[string]string{
			"message": "If that email is registered, a reset link is on the way",
		})
	}
}

func (h *AuthHandler) ConfirmPasswordReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.PasswordResetConfirm

		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ConfirmPasswordReset(r.Context(), &req); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Password updated"})
	}
}

func (h *AuthHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, user)
	}
}
