package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bookmarks/internal/domain"
)

// bookmarkRequest is the create/update body. The client has sent both
// snake_case and camelCase field names over time, so both are accepted.
type bookmarkRequest struct {
	Title           string            `json:"title"`
	URL             string            `json:"url"`
	Description     string            `json:"description"`
	CategoryID      *domain.FlexInt   `json:"category_id"`
	CategoryIDCamel *domain.FlexInt   `json:"categoryId"`
	IsPublic        *domain.FlexBool  `json:"is_public"`
	IsPublicCamel   *domain.FlexBool  `json:"isPublic"`
	IsPrivate       *domain.FlexBool  `json:"is_private"`
	Tags            *[]domain.FlexInt `json:"tags"`
}

func (req bookmarkRequest) input() domain.BookmarkInput {
	in := domain.BookmarkInput{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	}

	category := req.CategoryID
	if category == nil {
		category = req.CategoryIDCamel
	}
	if category != nil && *category > 0 {
		id := int64(*category)
		in.CategoryID = &id
	}

	switch {
	case req.IsPublic != nil:
		in.IsPublic = bool(*req.IsPublic)
	case req.IsPublicCamel != nil:
		in.IsPublic = bool(*req.IsPublicCamel)
	case req.IsPrivate != nil:
		in.IsPublic = !bool(*req.IsPrivate)
	}

	if req.Tags != nil {
		in.Tags = make([]int64, 0, len(*req.Tags))
		for _, tag := range *req.Tags {
			if tag > 0 {
				in.Tags = append(in.Tags, int64(tag))
			}
		}
	}
	return in
}

// parseListQuery reads the listing filters. Malformed numbers fall back to
// defaults and a category of "all" means no category filter.
func parseListQuery(r *http.Request) domain.ListQuery {
	values := r.URL.Query()

	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))

	return domain.ListQuery{
		Page:       page,
		Limit:      limit,
		CategoryID: parseFilterID(values.Get("categoryId")),
		TagID:      parseFilterID(values.Get("tagId")),
		Search:     strings.TrimSpace(values.Get("search")),
	}
}

func parseFilterID(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// decodeBookmark reads a bookmark body, writing a 400 when it is not JSON
func (h *Handler) decodeBookmark(w http.ResponseWriter, r *http.Request) (domain.BookmarkInput, bool) {
	var req bookmarkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid bookmark body: %v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return domain.BookmarkInput{}, false
	}
	return req.input(), true
}

// ListBookmarksHandler lists bookmarks with filters and pagination
func (h *Handler) ListBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	page, err := h.bookmarks.List(r.Context(), q)
	if err != nil {
		h.logger.Error("Failed to list bookmarks: %v", err)
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// CreateBookmarkHandler creates a bookmark
func (h *Handler) CreateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeBookmark(w, r)
	if !ok {
		return
	}

	userID := h.getUserID(r)
	id, err := h.bookmarks.Create(r.Context(), userID, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": id})
}

// GetBookmarkHandler returns one bookmark
func (h *Handler) GetBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	b, err := h.bookmarks.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, b)
}

// UpdateBookmarkHandler replaces a bookmark's fields
func (h *Handler) UpdateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	in, ok := h.decodeBookmark(w, r)
	if !ok {
		return
	}

	if err := h.bookmarks.Update(r.Context(), id, in); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteBookmarkHandler deletes a bookmark
func (h *Handler) DeleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	if err := h.bookmarks.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ClickBookmarkHandler counts a visit of a bookmark
func (h *Handler) ClickBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Bookmark not found")
		return
	}

	if err := h.bookmarks.RecordClick(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
