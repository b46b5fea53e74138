package handlers

import (
	"net/http"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
)

// Login exchanges email and password for a session token, returned in the
// body and as the token cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in forum.LoginInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	auth.SetTokenCookie(w, auth.UserCookie, sess.Token, sess.ExpiresAt, h.cookieSecure)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Login realizado com sucesso",
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
		"user":      sess.User,
	})
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.AdminLogin(r.Context(), in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	auth.SetTokenCookie(w, auth.AdminCookie, sess.Token, sess.ExpiresAt, h.cookieSecure)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Login de administrador realizado com sucesso",
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

// Logout clears both session cookies. Tokens stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, auth.UserCookie, h.cookieSecure)
	auth.ClearTokenCookie(w, auth.AdminCookie, h.cookieSecure)
	writeMessage(w, http.StatusOK, "Logout realizado com sucesso")
}

// Verify returns the claims of the caller's session.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	c := actor(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"uid":       c.UserID(),
		"name":      c.Name,
		"role":      c.Role,
		"expiresAt": c.ExpiresAt.Time,
	})
}
