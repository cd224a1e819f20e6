package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/hintwise/hintgate/internal/auth"
	"github.com/hintwise/hintgate/internal/rbac"
)

// ForbiddenResponse is the structured body returned on an RBAC denial. It
// names the caller's role, what that role may actually do, and what was
// attempted, so a denied client needs no further round-trip to understand
// the decision.
type ForbiddenResponse struct {
	Error               string   `json:"error"`
	Message             string   `json:"message"`
	YourRole            string   `json:"yourRole"`
	YourPermissions     []string `json:"yourPermissions"`
	RequiredPermissions []string `json:"requiredPermissions"`
}

// NewAuthzMiddleware enforces the role permission map for the request's HTTP
// method. It must run after authentication: a request without a principal in
// context is treated as unauthenticated rather than silently allowed.
func NewAuthzMiddleware(registry *rbac.Registry) (func(http.Handler) http.Handler, error) {
	if registry == nil {
		return nil, errors.New("authz middleware requires the role registry")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok || principal.PID == "" {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			allowed, err := registry.Allowed(principal.Role, r.Method)
			if err != nil {
				log.Printf("authorization error for %s (%s) on %s %s: %v",
					principal.PID, principal.Role, r.Method, r.URL.Path, err)
				http.Error(w, "authorization error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				log.Printf("access denied: %s (%s) attempted %s %s",
					principal.PID, principal.Role, r.Method, r.URL.Path)
				writeForbidden(w, principal, r.Method, registry.AllowedMethods(principal.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func writeForbidden(w http.ResponseWriter, principal auth.Principal, method string, permitted []string) {
	if permitted == nil {
		permitted = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(ForbiddenResponse{
		Error:               "Forbidden",
		Message:             fmt.Sprintf("Your role (%s) does not have permission to perform %s operations", principal.Role, method),
		YourRole:            principal.Role,
		YourPermissions:     permitted,
		RequiredPermissions: []string{method},
	})
}
