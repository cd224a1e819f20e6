package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "hintgate_token"

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past.
	ErrTokenExpired = errors.New("session token expired")

	// ErrTokenInvalid is returned for any other verification failure
	// (bad signature, malformed payload, wrong algorithm).
	ErrTokenInvalid = errors.New("session token invalid")
)

// SessionClaims is the claim set carried by a session token.
type SessionClaims struct {
	PID  string `json:"pid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies compact signed session tokens. Tokens are
// opaque to every other component: nothing outside this codec inspects the
// wire format. There is no revocation channel, so the compromise window is
// bounded by the configured TTL.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec signing with the server-held secret.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// Issue builds and signs a session token for the given principal.
func (c *TokenCodec) Issue(principal Principal) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		PID:  principal.PID,
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of a session token and returns
// the embedded principal. Expired and otherwise-invalid tokens map to
// distinct sentinel errors so logs can tell them apart; callers must treat
// both identically and fail closed.
func (c *TokenCodec) Verify(tokenString string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return Principal{}, ErrTokenInvalid
	}
	if claims.PID == "" {
		return Principal{}, fmt.Errorf("%w: missing pid claim", ErrTokenInvalid)
	}

	return Principal{PID: claims.PID, Role: claims.Role}, nil
}
