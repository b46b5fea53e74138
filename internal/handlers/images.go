package handlers

import (
	"errors"
	"net/http"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/images"
)

// UploadImage stores the multipart field "image" and returns a signed URL
// for it.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.images.MaxBytes()+64<<10)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeError(w, r, images.ErrTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			writeMessage(w, http.StatusBadRequest, "Campo de imagem ausente")
		default:
			writeMessage(w, http.StatusBadRequest, "Formulário inválido")
		}
		return
	}
	defer file.Close()

	name, err := h.images.Save(r.Context(), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	url, err := h.images.SignedURL(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name, "url": url})
}

// ServeImage streams an image when the URL token is valid for it.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.images.VerifyURLToken(name, r.URL.Query().Get("token")); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.images.Open(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
