package middleware

import (
	"net/http"

	"github.com/upb/postboard/internal/auth"
)

// Error codes written in rejection bodies
const (
	CodeMissingToken           = "missing_token"
	CodeInvalidToken           = "invalid_token"
	CodeInsufficientPermission = "insufficient_permission"
	CodeInternalError          = "internal_error"
)

// Rejection is the terminal outcome of a gate. It carries everything needed
// to write the response and log the decision.
type Rejection struct {
	Status  int
	Code    string
	Message string

	// Log-only fields
	Reason     string
	Role       auth.Role
	Permission auth.Permission
	Err        error
}

// Gate inspects a request and either passes it on (possibly with an enriched
// context) or rejects it.
type Gate func(r *http.Request) (*http.Request, *Rejection)

// Chain runs gates in order and stops at the first rejection
func Chain(gates ...Gate) Gate {
	return func(r *http.Request) (*http.Request, *Rejection) {
		for _, gate := range gates {
			next, rejection := gate(r)
			if rejection != nil {
				return nil, rejection
			}
			r = next
		}
		return r, nil
	}
}

// MissingToken rejects a request that carries no bearer credential
func MissingToken(reason string) *Rejection {
	return &Rejection{
		Status:  http.StatusUnauthorized,
		Code:    CodeMissingToken,
		Message: "authentication required",
		Reason:  reason,
	}
}

// InvalidToken rejects a request whose credential failed verification
func InvalidToken(reason string, err error) *Rejection {
	return &Rejection{
		Status:  http.StatusUnauthorized,
		Code:    CodeInvalidToken,
		Message: "invalid or expired credential",
		Reason:  reason,
		Err:     err,
	}
}

// InsufficientPermission rejects an authenticated caller whose role lacks permission
func InsufficientPermission(role auth.Role, permission auth.Permission) *Rejection {
	return &Rejection{
		Status:     http.StatusForbidden,
		Code:       CodeInsufficientPermission,
		Message:    "forbidden",
		Reason:     "permission not granted to role",
		Role:       role,
		Permission: permission,
	}
}

// internalRejection reports a collaborator failure that is not the caller's fault
func internalRejection(reason string, err error) *Rejection {
	return &Rejection{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
		Reason:  reason,
		Err:     err,
	}
}
