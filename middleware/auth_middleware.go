package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/postboard/internal/auth"
	"github.com/upb/postboard/services"
	"github.com/upb/postboard/utils"
	"go.uber.org/zap"
)

// TokenVerifier checks a bearer credential and returns the identity it carries
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// PermissionChecker answers whether a role holds a permission
type PermissionChecker interface {
	Allows(role auth.Role, permission auth.Permission) bool
}

// RoleResolver looks up the current role of a user in the store
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID uuid.UUID) (auth.Role, error)
}

// AuthMiddleware authenticates bearer tokens and enforces role permissions
type AuthMiddleware struct {
	verifier    TokenVerifier
	permissions PermissionChecker
	resolver    RoleResolver
	logger      *zap.Logger
}

// Option configures an AuthMiddleware
type Option func(*AuthMiddleware)

// WithRoleResolver makes every authenticated request re-read the caller's
// role from the store instead of trusting the role in the token
func WithRoleResolver(resolver RoleResolver) Option {
	return func(m *AuthMiddleware) {
		m.resolver = resolver
	}
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, permissions PermissionChecker, logger *zap.Logger, opts ...Option) *AuthMiddleware {
	m := &AuthMiddleware{
		verifier:    verifier,
		permissions: permissions,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate is the gate that verifies the bearer token and attaches the identity
func (m *AuthMiddleware) Authenticate(r *http.Request) (*http.Request, *Rejection) {
	token, ok := extractBearerToken(r)
	if !ok {
		return nil, MissingToken("no bearer token in Authorization header")
	}

	identity, err := m.verifier.Verify(r.Context(), token)
	if err != nil {
		reason := "token verification failed"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "token expired"
		}
		return nil, InvalidToken(reason, err)
	}
	if identity == nil {
		return nil, InvalidToken("verifier returned no identity", nil)
	}

	return r.WithContext(WithIdentity(r.Context(), identity)), nil
}

// ResolveRole is the gate that replaces the token's role with the stored one.
// A subject that no longer exists is treated as an invalid token.
func (m *AuthMiddleware) ResolveRole(r *http.Request) (*http.Request, *Rejection) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		return nil, MissingToken("no identity in context")
	}

	role, err := m.resolver.ResolveRole(r.Context(), identity.UserID)
	if err != nil {
		if services.IsNotFoundError(err) {
			return nil, InvalidToken("token subject no longer exists", err)
		}
		return nil, internalRejection("role lookup failed", err)
	}

	if role == identity.Role {
		return r, nil
	}

	resolved := *identity
	resolved.Role = role
	return r.WithContext(WithIdentity(r.Context(), &resolved)), nil
}

// HasPermission returns the gate that requires the caller's role to hold permission.
// A request without an identity fails closed.
func (m *AuthMiddleware) HasPermission(permission auth.Permission) Gate {
	return func(r *http.Request) (*http.Request, *Rejection) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			rejection := MissingToken("no identity in context")
			rejection.Permission = permission
			return nil, rejection
		}

		if !m.permissions.Allows(identity.Role, permission) {
			return nil, InsufficientPermission(identity.Role, permission)
		}

		return r, nil
	}
}

// authGates returns the authentication part of every protected chain
func (m *AuthMiddleware) authGates() []Gate {
	gates := []Gate{m.Authenticate}
	if m.resolver != nil {
		gates = append(gates, m.ResolveRole)
	}
	return gates
}

// Handler turns gates into chi-compatible middleware. On rejection the
// response is written and next is not called.
func (m *AuthMiddleware) Handler(gates ...Gate) func(http.Handler) http.Handler {
	gate := Chain(gates...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed, rejection := gate(r)
			if rejection != nil {
				m.reject(w, r, rejection)
				return
			}
			next.ServeHTTP(w, passed)
		})
	}
}

// RequireAuth requires a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.Handler(m.authGates()...)(next)
}

// RequirePermission requires a valid bearer token whose role holds permission
func (m *AuthMiddleware) RequirePermission(permission auth.Permission) func(http.Handler) http.Handler {
	return m.Handler(append(m.authGates(), m.HasPermission(permission))...)
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, rejection *Rejection) {
	fields := []zap.Field{
		zap.String("request_id", GetRequestIDFromContext(r.Context())),
		zap.String("reason", rejection.Reason),
		zap.String("role", string(rejection.Role)),
		zap.String("required_permission", string(rejection.Permission)),
		zap.Int("status", rejection.Status),
		zap.String("path", r.URL.Path),
	}
	if rejection.Err != nil {
		fields = append(fields, zap.Error(rejection.Err))
	}

	if rejection.Status >= http.StatusInternalServerError {
		m.logger.Error("authorization failed", fields...)
	} else {
		m.logger.Warn("request rejected", fields...)
	}

	switch rejection.Code {
	case CodeMissingToken:
		w.Header().Set("WWW-Authenticate", `Bearer`)
	case CodeInvalidToken:
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}

	if err := utils.WriteJSON(w, rejection.Status, utils.ErrorResponse{
		Error:   rejection.Code,
		Message: rejection.Message,
	}); err != nil {
		m.logger.Error("failed to write rejection response", zap.Error(err))
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header.
// The scheme is case-insensitive.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
