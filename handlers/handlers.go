package handlers

import (
	"net/http"

	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/middleware"
	"github.com/upb/postboard/services"
	"github.com/upb/postboard/utils"
	"go.uber.org/zap"
)

// PageResponse wraps a page of list results
type PageResponse struct {
	Items  interface{} `json:"items"`
	Count  int         `json:"count"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// HandleIndex handles GET /
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteText(w, http.StatusOK, "Hello World!")
}

// requireIdentity returns the caller's identity or writes a 401.
// Routes that reach a handler have already passed RequireAuth, so a miss means a wiring fault.
func requireIdentity(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*auth.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		logger.Error("identity not found in context",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path))
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return nil, false
	}
	return identity, true
}

// pageFromQuery reads limit and offset query parameters
func pageFromQuery(r *http.Request) (services.Page, error) {
	limit, err := utils.QueryInt(r, "limit", services.DefaultPageSize)
	if err != nil {
		return services.Page{}, err
	}
	offset, err := utils.QueryInt(r, "offset", 0)
	if err != nil {
		return services.Page{}, err
	}
	return services.NewPage(limit, offset), nil
}
