package auth

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// pendingLoginCookie holds the originally requested URL across the SSO
// bounce. It is signed and encrypted so clients can neither read nor forge
// it; the identifier is bound to a single browser by cookie scope.
const pendingLoginCookie = "hintgate_return_to"

// pendingLoginMaxAge bounds how long an interrupted login may resume.
const pendingLoginMaxAge = 10 * time.Minute

// LoginState manages the ephemeral pending-login state: created when an
// unauthenticated request is bounced to SSO, consumed exactly once when the
// login completes.
type LoginState struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewLoginState derives cookie signing and encryption keys from the gateway
// secret. Both keys are derived rather than stored so a single secret
// configures the whole gateway.
func NewLoginState(secret string, secure bool) *LoginState {
	hashKey := sha256.Sum256([]byte(secret + "|returnTo-hash"))
	blockKey := sha256.Sum256([]byte(secret + "|returnTo-block"))
	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.MaxAge(int(pendingLoginMaxAge.Seconds()))
	return &LoginState{codec: codec, secure: secure}
}

// Stash records the originally requested URL before redirecting to SSO.
// Encoding failures are swallowed: losing the return target degrades the
// post-login redirect to "/", it must not block the login itself.
func (s *LoginState) Stash(w http.ResponseWriter, returnTo string) {
	encoded, err := s.codec.Encode(pendingLoginCookie, returnTo)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     pendingLoginCookie,
		Value:    encoded,
		Path:     "/",
		Expires:  time.Now().Add(pendingLoginMaxAge),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Consume retrieves and clears the stashed URL. Returns "" when no valid
// state exists (absent, expired, or tampered cookie).
func (s *LoginState) Consume(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(pendingLoginCookie)
	if err != nil {
		return ""
	}

	// Clear regardless of whether decoding succeeds: the state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     pendingLoginCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	var returnTo string
	if err := s.codec.Decode(pendingLoginCookie, cookie.Value, &returnTo); err != nil {
		return ""
	}
	return returnTo
}
