package handlers

import (
	"net/http"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
)

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FolloweeID string `json:"followeeId"`
	}
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.svc.Follow(r.Context(), actor(r), in.FolloweeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Following(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unfollow(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Deixou de seguir")
}

func (h *Handler) CheckFollowing(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.IsFollowing(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"seguindo": ok})
}

func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var in forum.NotificationInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.svc.CreateNotification(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListNotifications(r.Context(), actor(r), r.PathValue("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkNotificationRead(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notificação marcada como lida")
}
