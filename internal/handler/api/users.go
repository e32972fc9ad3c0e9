package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/telemetry"
)

// UserHandler handles account administration.
type UserHandler struct {
	users  domain.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users domain.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: users, logger: logger}
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Role      string `json:"role" validate:"required"`
}

type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitnil,email,max=255"`
	FirstName *string `json:"firstName" validate:"omitnil,max=100"`
	LastName  *string `json:"lastName" validate:"omitnil,max=100"`
	Password  *string `json:"password" validate:"omitnil,min=8,max=72"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

type deleteUsersRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1,max=100,dive,required"`
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	handler.WriteJSON(w, http.StatusOK, out)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "users.create"

	var req createUserRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		handler.ErrorResponse(w, r, domain.NewValidationError(op, "role", "must be one of Shopper, Employee, Admin, SuperAdmin"))
		return
	}

	user, err := h.users.Create(r.Context(), domain.CreateUserInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.Signups.WithLabelValues(user.Role.String(), "admin").Inc()
	}

	handler.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /api/users/{username}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "users.update"

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError(op, "username", "is required"))
		return
	}

	var req updateUserRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	in := domain.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			handler.ErrorResponse(w, r, domain.NewValidationError(op, "role", "must be one of Shopper, Employee, Admin, SuperAdmin"))
			return
		}
		in.Role = &role
	}

	user, err := h.users.UpdateByUsername(r.Context(), username, in)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/users with a body listing usernames.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "users.delete"

	var req deleteUsersRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	caller := domain.RequirePrincipal(r.Context())
	for _, name := range req.Usernames {
		if strings.EqualFold(strings.TrimSpace(name), caller.Username) {
			handler.ErrorResponse(w, r, domain.Invalid(op, "You cannot delete your own account"))
			return
		}
	}

	n, err := h.users.DeleteByUsernames(r.Context(), req.Usernames)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "users deleted",
		"count", n,
		"requested", len(req.Usernames),
		"deleted_by", caller.UserID.String(),
	)
	handler.WriteJSON(w, http.StatusOK, countResponse{
		Message: "Users deleted",
		Count:   n,
	})
}
