package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookmarks/internal/domain"
)

// maxImportBytes bounds the size of an import upload
const maxImportBytes = 10 << 20

// ExportHandler streams a full backup as a JSON attachment. With
// scope=bookmarks only the bookmarks are included.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	env, err := h.transfer.Export(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	var body interface{} = env
	if r.URL.Query().Get("scope") == "bookmarks" {
		body = struct {
			Version    string            `json:"version"`
			ExportedAt time.Time         `json:"exportedAt"`
			Bookmarks  []domain.Bookmark `json:"bookmarks"`
		}{env.Version, env.ExportedAt, env.Bookmarks}
	}

	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks-export.json"`)
	h.writeJSON(w, http.StatusOK, body)
}

// ImportHandler bulk inserts bookmarks from an uploaded export
func (h *Handler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Import file is too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "Failed to read import body")
		return
	}

	result, err := h.transfer.ImportPayload(r.Context(), h.getUserID(r), data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"imported": result.Imported,
		"errors":   result.Errors,
		"message":  fmt.Sprintf("Successfully imported %d bookmarks with %d errors", result.Imported, result.Errors),
	})
}

// ImageHandler returns the themed background image. It always answers 200.
func (h *Handler) ImageHandler(w http.ResponseWriter, r *http.Request) {
	img := h.images.Get(r.Context(), r.URL.Query().Get("theme"))
	h.writeJSON(w, http.StatusOK, img)
}
