// Package auth is the identity gateway: credential checks against a Provider,
// signed session tokens, and the cookie and context plumbing around them.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	ErrUnauthenticated    = errors.New("no session token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password must have at least 6 characters")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	UserCookie  = "token"
	AdminCookie = "adminToken"
)

// SetTokenCookie stores a session token in an HTTP-only cookie.
func SetTokenCookie(w http.ResponseWriter, name, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearTokenCookie expires the named cookie immediately.
func ClearTokenCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

type contextKey string

const claimsContextKey contextKey = "claims"

// WithClaims returns a copy of ctx carrying the verified claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

// ClaimsFromContext returns the claims put there by the auth middleware, or
// nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return c
}
