package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/telemetry"
)

// TokenIssuer signs access tokens for a principal.
type TokenIssuer interface {
	Issue(p *domain.Principal) (token string, expiresAt time.Time, err error)
}

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	users  domain.UserService
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users domain.UserService, tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

type registerRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName" validate:"max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"

	var req registerRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), domain.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.Signups.WithLabelValues(user.Role.String(), "register").Inc()
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"

	var req loginRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if telemetry.Business != nil {
			telemetry.Business.LoginFailed.WithLabelValues(loginFailureReason(err)).Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.Logins.WithLabelValues(user.Role.String()).Inc()
	}
	h.logger.InfoContext(r.Context(), "user logged in", "user_id", user.ID.String())

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout.
// Tokens are stateless; the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.WriteMessage(w, http.StatusOK, "Logged out")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	user, err := h.users.Get(r.Context(), p.UserID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Refresh handles POST /api/auth/refresh. The new token reflects the
// account's current role; disabled accounts cannot refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	user, err := h.users.Get(r.Context(), p.UserID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			handler.ErrorResponse(w, r, domain.Unauthorized("auth.refresh", "Account no longer exists"))
			return
		}
		handler.ErrorResponse(w, r, err)
		return
	}
	if !user.IsActive {
		handler.ErrorResponse(w, r, domain.ErrAccountDisabled)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

type createEmployeeRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// CreateEmployee handles POST /api/admin/auth. Admins may only create
// Employee accounts here; other roles go through /api/users.
func (h *AuthHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	const op = "auth.create_employee"

	var req createEmployeeRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), domain.CreateUserInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.RoleEmployee,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.Signups.WithLabelValues(user.Role.String(), "admin").Inc()
	}
	h.logger.InfoContext(r.Context(), "employee account created",
		"user_id", user.ID.String(),
		"created_by", domain.UserIDFromContext(r.Context()).String(),
	)

	handler.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, expiresAt, err := h.tokens.Issue(user.Principal())
	if err != nil {
		handler.ErrorResponse(w, r, domain.Internal(err, "auth.issue_token", "failed to issue token"))
		return
	}
	handler.WriteJSON(w, status, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}

func loginFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	}
	return "error"
}
