package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
)

// TokenVerifier checks session tokens.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

type tokenErrKey struct{}

// Authenticate reads the session token from the Authorization bearer header
// or the adminToken / token cookies and stores its claims in the request
// context. Candidates are tried in that order until one verifies, so a stale
// admin cookie does not hide a valid user session. Requests without a valid
// token continue anonymously; every rejected cookie is cleared.
func Authenticate(tokens TokenVerifier, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var firstErr error
			for _, c := range tokenCandidates(r) {
				claims, err := tokens.Verify(c.raw)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
					return
				}
				if c.cookie != "" {
					auth.ClearTokenCookie(w, c.cookie, secureCookies)
				}
				slog.Debug("session token rejected", "path", r.URL.Path, "cookie", c.cookie, "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
			if firstErr != nil {
				r = r.WithContext(context.WithValue(r.Context(), tokenErrKey{}, firstErr))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type tokenCandidate struct {
	raw    string
	cookie string // empty for the Authorization header
}

func tokenCandidates(r *http.Request) []tokenCandidate {
	var out []tokenCandidate
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(token) != "" {
			out = append(out, tokenCandidate{raw: strings.TrimSpace(token)})
		}
	}
	for _, name := range []string{auth.AdminCookie, auth.UserCookie} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			out = append(out, tokenCandidate{raw: c.Value, cookie: name})
		}
	}
	return out
}

// RequireAuth answers 401 when the request carries no usable session and 403
// when it carried a forged or malformed one.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.ClaimsFromContext(r.Context()) == nil {
			rejectAnonymous(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only administrator sessions through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		if claims == nil {
			rejectAnonymous(w, r)
			return
		}
		if !claims.IsAdmin() {
			writeJSONError(w, http.StatusForbidden, "Acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rejectAnonymous(w http.ResponseWriter, r *http.Request) {
	err, _ := r.Context().Value(tokenErrKey{}).(error)
	if errors.Is(err, auth.ErrInvalidToken) {
		writeJSONError(w, http.StatusForbidden, "Token inválido")
		return
	}
	writeJSONError(w, http.StatusUnauthorized, "Usuário não autenticado")
}
