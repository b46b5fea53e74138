// Package handlers maps the JSON HTTP API onto forum operations.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/images"
)

const maxBodyBytes = 1 << 20

// Handler serves the API routes.
type Handler struct {
	svc          *forum.Service
	images       images.Store
	cookieSecure bool
}

func New(svc *forum.Service, img images.Store, cookieSecure bool) *Handler {
	return &Handler{svc: svc, images: img, cookieSecure: cookieSecure}
}

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError turns a service error into its status code and body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	body := errorBody{Message: message, Error: err.Error()}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, forum.ErrMissingFields):
		return http.StatusBadRequest, "Campos obrigatórios ausentes"
	case errors.Is(err, forum.ErrInvalidInput):
		return http.StatusBadRequest, "Dados inválidos"
	case errors.Is(err, forum.ErrUnauthenticated):
		return http.StatusUnauthorized, "Usuário não autenticado"
	case errors.Is(err, forum.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Credenciais inválidas"
	case errors.Is(err, forum.ErrInvalidToken):
		return http.StatusForbidden, "Token inválido"
	case errors.Is(err, forum.ErrForbidden):
		return http.StatusForbidden, "Acesso negado"
	case errors.Is(err, forum.ErrNotFound):
		return http.StatusNotFound, "Não encontrado"
	case errors.Is(err, forum.ErrDuplicateSubmission):
		return http.StatusConflict, "Publicação duplicada, aguarde antes de enviar novamente"
	case errors.Is(err, forum.ErrConflict):
		return http.StatusConflict, "Conflito com dados existentes"
	case errors.Is(err, images.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "Imagem muito grande"
	case errors.Is(err, images.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "Tipo de imagem não suportado"
	case errors.Is(err, images.ErrNotFound), errors.Is(err, images.ErrInvalidName):
		return http.StatusNotFound, "Imagem não encontrada"
	case errors.Is(err, images.ErrInvalidURL):
		return http.StatusForbidden, "Link de imagem inválido ou expirado"
	}
	return http.StatusInternalServerError, "Erro interno do servidor"
}

// decode reads a JSON body into dst. Malformed bodies are ErrInvalidInput.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return forum.ErrMissingFields
		}
		return errors.Join(forum.ErrInvalidInput, err)
	}
	return nil
}

func actor(r *http.Request) *auth.Claims {
	return auth.ClaimsFromContext(r.Context())
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
