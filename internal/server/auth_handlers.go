package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/hintwise/hintgate/internal/auth"
	"github.com/hintwise/hintgate/internal/config"
	"github.com/hintwise/hintgate/internal/rbac"
)

// AuthHandlerDependencies bundles the collaborators of the login and logout handlers.
type AuthHandlerDependencies struct {
	Tickets    auth.TicketValidator
	Registry   *rbac.Registry
	Codec      *auth.TokenCodec
	LoginState *auth.LoginState
	Cfg        *config.Config
}

// callbackURL is the service URL the SSO server redirects back to after
// authenticating the browser. Login is its own callback: the ticket arrives
// as a query parameter on a second pass through the same handler.
func (d AuthHandlerDependencies) callbackURL() string {
	return d.Cfg.ServerURL + "/login"
}

// HandleLogin drives both halves of the SSO bounce. Without a ticket it
// redirects the browser to the SSO login endpoint; with one it validates the
// ticket server-to-server, resolves the principal's role, issues the session
// token and resumes the originally requested URL.
func HandleLogin(deps AuthHandlerDependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := deps.callbackURL()

		ticket := r.URL.Query().Get("ticket")
		if ticket == "" {
			http.Redirect(w, r, deps.Tickets.LoginURL(service), http.StatusFound)
			return
		}

		pid, err := deps.Tickets.ValidateTicket(r.Context(), ticket, service)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidTicket) {
				// Stale or replayed ticket. Restart the bounce; the SSO
				// session usually still holds, so this is a single redirect
				// hop for the user.
				log.Printf("sso rejected ticket: %v", err)
				http.Redirect(w, r, deps.Tickets.LoginURL(service), http.StatusFound)
				return
			}
			log.Printf("sso validation call failed: %v", err)
			http.Error(w, "Login temporarily unavailable", http.StatusBadGateway)
			return
		}

		principal := auth.Principal{PID: pid, Role: deps.Registry.Resolve(pid)}
		token, err := deps.Codec.Issue(principal)
		if err != nil {
			log.Printf("issue session token for %s: %v", pid, err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(deps.Cfg.TokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   deps.Cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		log.Printf("user %s logged in with role %s", principal.PID, principal.Role)

		returnTo := deps.LoginState.Consume(w, r)
		if returnTo == "" {
			returnTo = "/"
		}
		http.Redirect(w, r, returnTo, http.StatusFound)
	}
}

// HandleLogout destroys the browser's session and forwards it to the SSO
// logout endpoint. There is no revocation list, so the token itself stays
// valid until expiry and logout is strictly a browser-side operation.
func HandleLogout(deps AuthHandlerDependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
			if principal, verr := deps.Codec.Verify(cookie.Value); verr == nil {
				log.Printf("user %s logged out", principal.PID)
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   deps.Cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, deps.Tickets.LogoutURL(), http.StatusFound)
	}
}
