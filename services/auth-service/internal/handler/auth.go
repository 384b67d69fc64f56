package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/bookhaven/book-platform-api/services/auth-service/internal/model"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/repository"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/usecase"
	"github.com/bookhaven/book-platform-api/shared/apperror"
	"github.com/bookhaven/book-platform-api/shared/httpx"
	"github.com/bookhaven/book-platform-api/shared/middleware"
	"github.com/bookhaven/book-platform-api/shared/validate"
)

// AuthHandler exposes the authentication endpoints over HTTP.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	userRepo    repository.UserRepository
	validator   *validate.Validator
	logger      *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	userRepo repository.UserRepository,
	validator *validate.Validator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		userRepo:    userRepo,
		validator:   validator,
		logger:      logger,
	}
}

// RegisterRoutes mounts the auth endpoints under /api/auth. Logout and me
// require a bearer access token via the supplied middleware.
func (h *AuthHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,passwordstrength"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Name     string `json:"name"     validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,passwordstrength"`
}

// authResponse is the payload for register and login: the account plus a
// fresh token pair. The password hash is stripped by the model's json tags.
type authResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Name:     req.Name,
	})
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, authResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, authResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		httpx.RespondError(w, apperror.NewBadRequest("refresh token is required"))
		return
	}

	tokens, err := h.authUsecase.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, tokens)
}

// Logout revokes the supplied refresh token. It never fails the
// client-visible flow: a missing or already-revoked token leaves the client
// in the same logged-out end state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err == nil && req.RefreshToken != "" {
		if err := h.authUsecase.Logout(r.Context(), req.RefreshToken); err != nil {
			h.respondUsecaseError(w, err)
			return
		}
	}

	httpx.RespondMessage(w, http.StatusOK, "logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, apperror.NewUnauthorized("invalid access token"))
		return
	}

	user, err := h.authUsecase.CurrentUser(r.Context(), userID)
	if err != nil {
		h.respondUsecaseError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, user)
}

// ForgotPassword acknowledges the request without acting on it: reset-token
// issuance and delivery are not implemented yet. The response is the same
// whether or not the account exists.
// TODO: issue and persist reset tokens once an email sender is wired in.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.userRepo.GetUserByEmail(r.Context(), req.Email); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.logger.Error().Err(err).Msg("failed to look up account for password reset")
		httpx.RespondError(w, apperror.NewInternal())
		return
	}

	httpx.RespondMessage(w, http.StatusOK, "if that account exists, password reset instructions will be sent")
}

// ResetPassword is not yet supported; there is no reset token to redeem.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	httpx.RespondError(w, apperror.NewNotImplemented("password reset is not yet supported"))
}

// decodeAndValidate reads the JSON body into req and validates it, writing
// the error response itself on failure.
func (h *AuthHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := httpx.DecodeJSON(w, r, req); err != nil {
		httpx.RespondError(w, apperror.NewBadRequest("invalid request body"))
		return false
	}

	details, err := h.validator.Struct(req)
	if err != nil {
		if details != nil {
			httpx.RespondError(w, apperror.NewValidation("invalid request", details))
		} else {
			h.logger.Error().Err(err).Msg("request validation failed unexpectedly")
			httpx.RespondError(w, apperror.NewInternal())
		}
		return false
	}

	return true
}

func (h *AuthHandler) respondUsecaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		httpx.RespondError(w, apperror.NewConflict("email or username is already in use"))
	case errors.Is(err, usecase.ErrInvalidCredentials):
		httpx.RespondError(w, apperror.NewUnauthorized("invalid email or password"))
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		httpx.RespondError(w, apperror.NewUnauthorized("invalid refresh token"))
	case errors.Is(err, usecase.ErrUserNotFound):
		httpx.RespondError(w, apperror.NewNotFound("user not found"))
	default:
		h.logger.Error().Err(err).Msg("auth request failed")
		httpx.RespondError(w, apperror.NewInternal())
	}
}
