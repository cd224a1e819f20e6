package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/hintwise/hintgate/internal/auth"
)

// Skipper defines a function to skip authentication for matching requests.
type Skipper func(*http.Request) bool

// AuthnDependencies bundles collaborators required by the authentication middleware.
type AuthnDependencies struct {
	Codec      *auth.TokenCodec
	LoginState *auth.LoginState
	// LoginPath is where unauthenticated browsers are redirected. Defaults to /login.
	LoginPath string
	// Skipper exempts public routes. Defaults to health, login and logout.
	Skipper Skipper
}

// NewAuthnMiddleware verifies the session token on every protected request.
// The token is looked up in the Authorization header first, the session
// cookie second. Requests without a trustable token are not answered with an
// error body: the original URL is stashed as pending-login state and the
// browser is redirected to the login entry point.
func NewAuthnMiddleware(deps AuthnDependencies) (func(http.Handler) http.Handler, error) {
	if deps.Codec == nil {
		return nil, errors.New("authn middleware requires a token codec")
	}
	if deps.LoginState == nil {
		return nil, errors.New("authn middleware requires pending-login state")
	}
	if deps.LoginPath == "" {
		deps.LoginPath = "/login"
	}
	skipper := deps.Skipper
	if skipper == nil {
		skipper = defaultSkipper
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				bounceToLogin(w, r, deps)
				return
			}

			principal, err := deps.Codec.Verify(token)
			if err != nil {
				// Expired and invalid tokens are handled identically (fail
				// closed, force re-login) but logged distinctly.
				if errors.Is(err, auth.ErrTokenExpired) {
					log.Printf("expired token on %s %s, redirecting to login", r.Method, r.URL.Path)
				} else {
					log.Printf("invalid token on %s %s: %v", r.Method, r.URL.Path, err)
				}
				bounceToLogin(w, r, deps)
				return
			}

			ctx := auth.SetPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// extractToken looks for a bearer token in the Authorization header, then
// falls back to the session cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// bounceToLogin records the originally requested URL and redirects the
// browser to the login entry point.
func bounceToLogin(w http.ResponseWriter, r *http.Request, deps AuthnDependencies) {
	deps.LoginState.Stash(w, r.URL.RequestURI())
	http.Redirect(w, r, deps.LoginPath, http.StatusFound)
}

func defaultSkipper(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.Method == http.MethodOptions {
		return true
	}

	// Public paths that must stay reachable without a session.
	switch r.URL.Path {
	case "/health", "/login", "/logout":
		return true
	}
	return false
}
