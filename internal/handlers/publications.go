package handlers

import (
	"net/http"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
)

func (h *Handler) CreatePublication(w http.ResponseWriter, r *http.Request) {
	var in forum.PublicationInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	pub, err := h.svc.CreatePublication(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pub)
}

// ListPublications accepts an optional ?authorId= filter.
func (h *Handler) ListPublications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.svc.ListPublications(r.Context(), r.URL.Query().Get("authorId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pubs)
}

func (h *Handler) DeletePublications(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []string `json:"ids"`
	}
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.svc.DeletePublications(r.Context(), actor(r), in.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Publicações excluídas com sucesso",
		"deleted": n,
	})
}

func (h *Handler) GetPublication(w http.ResponseWriter, r *http.Request) {
	pub, err := h.svc.GetPublication(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (h *Handler) UpdatePublication(w http.ResponseWriter, r *http.Request) {
	var in forum.PublicationPatch
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	pub, err := h.svc.UpdatePublication(r.Context(), actor(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pub)
}

func (h *Handler) DeletePublication(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePublication(r.Context(), actor(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Publicação excluída com sucesso")
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	pub, err := h.svc.LikePublication(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Publicação curtida", "likeCount": pub.LikeCount})
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	pub, err := h.svc.UnlikePublication(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Curtida removida", "likeCount": pub.LikeCount})
}

// LikeStatus tells whether the caller has liked the publication.
func (h *Handler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	liked, err := h.svc.HasLiked(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"curtido": liked})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in forum.CommentInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.CreateComment(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
