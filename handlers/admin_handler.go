package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/middleware"
	"github.com/upb/postboard/models"
	"github.com/upb/postboard/services"
	"github.com/upb/postboard/utils"
	"go.uber.org/zap"
)

// UpdateRoleRequest represents a request to change a user's role
type UpdateRoleRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,max=50"`
}

// UserService defines the user-management operations used by AdminHandler
type UserService interface {
	List(ctx context.Context, page services.Page) ([]*models.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role auth.Role) (*models.User, error)
}

// AdminHandler handles the user-management endpoints
type AdminHandler struct {
	service UserService
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service UserService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListUsers handles GET /admin
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	users, err := h.service.List(r.Context(), page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, PageResponse{
		Items:  users,
		Count:  len(users),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// HandleUpdateRole handles PATCH /admin/role
func (h *AdminHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteDecodeError(w, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	userID, err := utils.ParseUUID(req.UserID, "user_id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	user, err := h.service.UpdateRole(r.Context(), userID, auth.Role(req.Role))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	}
	if caller, ok := middleware.IdentityFromContext(r.Context()); ok {
		fields = append(fields, zap.String("changed_by", caller.UserID.String()))
	}
	h.logger.Info("role updated", fields...)

	_ = utils.WriteOK(w, user)
}
