package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"github.com/upb/postboard/app"
	"github.com/upb/postboard/handlers"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/middleware"
	"github.com/upb/postboard/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.Server.WriteTimeout))

	// Security headers
	r.Use(secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           cfg.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !cfg.IsProduction(),
	}).Handler)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "WWW-Authenticate"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authz := deps.AuthMiddleware

	r.Get("/", handlers.HandleIndex)

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	r.Route("/auth", func(r chi.Router) {
		// Credential endpoints are limited per client address
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					_ = utils.WriteTooManyRequests(w, "Too many authentication attempts", nil)
				}),
			))
			r.Post("/register", deps.AuthHandler.HandleRegister)
			r.Post("/login", deps.AuthHandler.HandleLogin)
		})

		r.With(authz.RequireAuth).Get("/me", deps.AuthHandler.HandleMe)
	})

	r.Route("/posts", func(r chi.Router) {
		r.With(authz.RequirePermission(auth.PermissionRead)).Get("/", deps.PostHandler.HandleList)
		r.With(authz.RequirePermission(auth.PermissionRead)).Get("/{id}", deps.PostHandler.HandleGet)
		r.With(authz.RequirePermission(auth.PermissionWrite)).Post("/", deps.PostHandler.HandleCreate)
		r.With(authz.RequirePermission(auth.PermissionDelete)).Delete("/{id}", deps.PostHandler.HandleDelete)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authz.RequirePermission(auth.PermissionManageUsers))
		r.Get("/", deps.AdminHandler.HandleListUsers)
		r.Patch("/role", deps.AdminHandler.HandleUpdateRole)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
