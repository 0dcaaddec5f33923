package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/postboard/middleware"
	"github.com/upb/postboard/models"
	"github.com/upb/postboard/services"
	"github.com/upb/postboard/utils"
	"go.uber.org/zap"
)

// CreatePostRequest represents a request to publish a post
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,max=255"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags,omitempty" validate:"max=20,dive,required,max=50"`
}

// PostService defines the post operations used by PostHandler
type PostService interface {
	List(ctx context.Context, page services.Page) ([]*models.Post, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, authorID uuid.UUID, in services.CreatePostInput) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	service PostService
	logger  *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		logger:  logger,
	}
}

// HandleList handles GET /posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	posts, err := h.service.List(r.Context(), page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, PageResponse{
		Items:  posts,
		Count:  len(posts),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// HandleGet handles GET /posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"), "post ID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, post)
}

// HandleCreate handles POST /posts
// The caller becomes the author
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		_ = utils.WriteDecodeError(w, err)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	post, err := h.service.Create(r.Context(), identity.UserID, services.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("post created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("post_id", post.ID.String()),
		zap.String("author_id", identity.UserID.String()))

	_ = utils.WriteCreated(w, post)
}

// HandleDelete handles DELETE /posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"), "post ID")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
