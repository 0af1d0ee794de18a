package handlers

import (
	"encoding/json"
	"net/http"

	"bookmarks/internal/domain"
)

// ListCategoriesHandler lists categories with their bookmark counts
func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomy.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories: %v", err)
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CreateCategoryHandler creates a category
func (h *Handler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	c, err := h.taxonomy.CreateCategory(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": c.ID, "category": c})
}

// DeleteCategoryHandler deletes a category; its bookmarks stay, uncategorized
func (h *Handler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	if err := h.taxonomy.DeleteCategory(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListTagsHandler lists tags
func (h *Handler) ListTagsHandler(w http.ResponseWriter, r *http.Request) {
	tags, err := h.taxonomy.ListTags(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tags: %v", err)
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

// CreateTagHandler creates a tag
func (h *Handler) CreateTagHandler(w http.ResponseWriter, r *http.Request) {
	var in domain.TagInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	t, err := h.taxonomy.CreateTag(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": t.ID, "tag": t})
}
