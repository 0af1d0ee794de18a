package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"bookmarks/internal/config"
	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
	"bookmarks/internal/service"

	"github.com/gorilla/mux"
)

// BookmarkService interface for bookmark operations
type BookmarkService interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.BookmarkPage, error)
	Get(ctx context.Context, id int64) (*domain.BookmarkWithTags, error)
	Create(ctx context.Context, owner string, in domain.BookmarkInput) (int64, error)
	Update(ctx context.Context, id int64, in domain.BookmarkInput) error
	Delete(ctx context.Context, id int64) error
	RecordClick(ctx context.Context, id int64) error
}

// TaxonomyService interface for category and tag operations
type TaxonomyService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
	CreateTag(ctx context.Context, in domain.TagInput) (*domain.Tag, error)
}

// TransferService interface for export and import
type TransferService interface {
	Export(ctx context.Context) (*domain.ExportEnvelope, error)
	ImportPayload(ctx context.Context, owner string, data []byte) (domain.ImportResult, error)
}

// ImageService interface for the themed background image
type ImageService interface {
	Get(ctx context.Context, theme string) domain.Image
}

// maxBodyBytes bounds request bodies other than imports
const maxBodyBytes = 1 << 20

// Handler holds the HTTP handlers
type Handler struct {
	bookmarks BookmarkService
	taxonomy  TaxonomyService
	transfer  TransferService
	images    ImageService
	config    *config.Config
	logger    *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(
	bookmarks BookmarkService,
	taxonomy TaxonomyService,
	transfer TransferService,
	images ImageService,
	cfg *config.Config,
	log *logger.Logger,
) *Handler {
	log.Info("Handler initialized successfully")

	return &Handler{
		bookmarks: bookmarks,
		taxonomy:  taxonomy,
		transfer:  transfer,
		images:    images,
		config:    cfg,
		logger:    log,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/bookmarks", h.ListBookmarksHandler).Methods("GET")
	api.HandleFunc("/bookmarks", h.CreateBookmarkHandler).Methods("POST")
	api.HandleFunc("/bookmarks/{id:[0-9]+}", h.GetBookmarkHandler).Methods("GET")
	api.HandleFunc("/bookmarks/{id:[0-9]+}", h.UpdateBookmarkHandler).Methods("PUT")
	api.HandleFunc("/bookmarks/{id:[0-9]+}", h.DeleteBookmarkHandler).Methods("DELETE")
	api.HandleFunc("/bookmarks/{id:[0-9]+}/click", h.ClickBookmarkHandler).Methods("POST")

	api.HandleFunc("/categories", h.ListCategoriesHandler).Methods("GET")
	api.HandleFunc("/categories", h.CreateCategoryHandler).Methods("POST")
	api.HandleFunc("/categories/{id:[0-9]+}", h.DeleteCategoryHandler).Methods("DELETE")

	api.HandleFunc("/tags", h.ListTagsHandler).Methods("GET")
	api.HandleFunc("/tags", h.CreateTagHandler).Methods("POST")

	api.HandleFunc("/export", h.ExportHandler).Methods("GET")
	api.HandleFunc("/import", h.ImportHandler).Methods("POST")

	api.HandleFunc("/bing-image", h.ImageHandler).Methods("GET")
	api.HandleFunc("/bing-wallpaper", h.ImageHandler).Methods("GET")

	// Preflights carrying CORS headers are answered by the CORS middleware
	api.PathPrefix("/").HandlerFunc(h.OptionsHandler).Methods("OPTIONS")

	// 404 for every other API path, including wrong methods
	api.PathPrefix("/").HandlerFunc(h.APINotFoundHandler)
	router.Handle("/api", http.HandlerFunc(h.APINotFoundHandler))

	// Everything else is the client bundle
	if h.config.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(h.config.StaticDir)))
	}
}

// OptionsHandler answers a bare OPTIONS request
func (h *Handler) OptionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, PUT, DELETE, OPTIONS")
	w.WriteHeader(http.StatusNoContent)
}

// APINotFoundHandler handles unmatched API paths
func (h *Handler) APINotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("No API endpoint for %s %s", r.Method, r.URL.Path)
	h.writeError(w, http.StatusNotFound, "API endpoint not found")
}

// writeJSON writes v as a JSON response body
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error onto its HTTP status
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidation(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case service.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID reads the numeric {id} route variable
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// getUserID extracts user ID from request. There is no authentication, so
// every request acts as the configured default user.
func (h *Handler) getUserID(r *http.Request) string {
	return h.config.DefaultUser
}
