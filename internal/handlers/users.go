package handlers

import (
	"net/http"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
)

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in forum.RegisterInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Usuário criado com sucesso",
		"id":      user.ID,
		"user":    user,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in forum.UpdateUserInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.UpdateUser(r.Context(), actor(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) UpdateUserImage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.svc.UpdateUserImage(r.Context(), actor(r), r.PathValue("id"), in.ImageURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Usuário excluído com sucesso")
}
