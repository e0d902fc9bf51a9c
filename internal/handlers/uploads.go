package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/jobfolio/apiserver/internal/storage"
)

// UploadsHandler serves uploaded files back out of object storage.
type UploadsHandler struct {
	store storage.ObjectStorage
	log   *slog.Logger
}

// NewUploadsHandler constructs an UploadsHandler over the given backend.
func NewUploadsHandler(store storage.ObjectStorage, log *slog.Logger) *UploadsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UploadsHandler{
		store: store,
		log:   log.With("component", "uploads"),
	}
}

// UploadsRouter registers the static upload route.
func UploadsRouter(r chi.Router, store storage.ObjectStorage, log *slog.Logger) {
	handler := NewUploadsHandler(store, log)
	r.Get("/{filename}", handler.Serve)
}

// Serve streams the named upload to the client.
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	object, err := h.store.Get(r.Context(), filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to open upload", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, object); err != nil {
		h.log.ErrorContext(r.Context(), "failed to stream upload", "filename", filename, "error", err)
	}
}
