package service

import (
	"context"
	"fmt"
	"strings"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
)

// MaxPageSize caps the limit a caller can request
const MaxPageSize = 100

// BookmarkRepository interface for bookmark operations
type BookmarkRepository interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.BookmarkWithTags, error)
	Count(ctx context.Context, q domain.ListQuery) (int, error)
	GetByID(ctx context.Context, id int64) (*domain.BookmarkWithTags, error)
	Create(ctx context.Context, b *domain.Bookmark) error
	AddTags(ctx context.Context, bookmarkID int64, tagIDs []int64) (int, error)
	ReplaceTags(ctx context.Context, bookmarkID int64, tagIDs []int64) error
	Update(ctx context.Context, b *domain.Bookmark) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	IncrementClicks(ctx context.Context, id int64) (bool, error)
	All(ctx context.Context) ([]domain.Bookmark, error)
	Associations(ctx context.Context) ([]domain.BookmarkTag, error)
}

// CategoryRepository interface for category operations
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// MarkdownRenderer turns a bookmark description into HTML
type MarkdownRenderer interface {
	Render(src string) (string, error)
}

// BookmarkService handles listing and mutation of bookmarks
type BookmarkService struct {
	bookmarks    BookmarkRepository
	categories   CategoryRepository
	renderer     MarkdownRenderer
	defaultLimit int
	logger       *logger.Logger
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(
	bookmarks BookmarkRepository,
	categories CategoryRepository,
	renderer MarkdownRenderer,
	defaultLimit int,
	log *logger.Logger,
) *BookmarkService {
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	log.Info("Bookmark service initialized (default page size %d)", defaultLimit)
	return &BookmarkService{
		bookmarks:    bookmarks,
		categories:   categories,
		renderer:     renderer,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// normalize coerces out-of-range paging values to their defaults
func (s *BookmarkService) normalize(q domain.ListQuery) domain.ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = s.defaultLimit
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// List returns one filtered page of bookmarks and its pagination. The total
// is counted with the same filters as the page itself.
func (s *BookmarkService) List(ctx context.Context, q domain.ListQuery) (*domain.BookmarkPage, error) {
	q = s.normalize(q)
	s.logger.Debug("Listing bookmarks: page=%d limit=%d category=%v tag=%v search='%s'",
		q.Page, q.Limit, derefID(q.CategoryID), derefID(q.TagID), q.Search)

	total, err := s.bookmarks.Count(ctx, q)
	if err != nil {
		s.logger.Error("Failed to count bookmarks: %v", err)
		return nil, err
	}

	list := []domain.BookmarkWithTags{}
	if q.Offset() < total {
		list, err = s.bookmarks.List(ctx, q)
		if err != nil {
			s.logger.Error("Failed to list bookmarks: %v", err)
			return nil, err
		}
	}

	page := &domain.BookmarkPage{
		Bookmarks:  list,
		Pagination: domain.NewPagination(q.Page, q.Limit, total),
	}
	s.logger.Debug("Listed %d of %d bookmarks (%d pages)", len(list), total, page.Pagination.Pages)
	return page, nil
}

// Get returns a single bookmark with its description rendered to HTML
func (s *BookmarkService) Get(ctx context.Context, id int64) (*domain.BookmarkWithTags, error) {
	b, err := s.bookmarks.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get bookmark %d: %v", id, err)
		return nil, err
	}
	if b == nil {
		s.logger.Warn("Bookmark %d not found", id)
		return nil, NotFoundError{Resource: "bookmark", ID: id}
	}

	if s.renderer != nil && b.Description != "" {
		html, err := s.renderer.Render(b.Description)
		if err != nil {
			s.logger.Warn("Failed to render description of bookmark %d: %v", id, err)
		} else {
			b.DescriptionHTML = html
		}
	}
	return b, nil
}

// Create validates and stores a new bookmark owned by owner, then
// associates the requested tags. It returns the new id.
func (s *BookmarkService) Create(ctx context.Context, owner string, in domain.BookmarkInput) (int64, error) {
	in = trimInput(in)
	s.logger.Info("Processing bookmark create: title='%s' url='%s' owner='%s'", in.Title, in.URL, owner)

	if err := s.validateInput(ctx, in); err != nil {
		s.logger.Warn("Bookmark create validation failed: %v", err)
		return 0, err
	}

	b := &domain.Bookmark{
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		IsPublic:    in.IsPublic,
		UserID:      owner,
	}
	if err := s.bookmarks.Create(ctx, b); err != nil {
		s.logger.Error("Failed to create bookmark: %v", err)
		return 0, fmt.Errorf("failed to create bookmark: %w", err)
	}

	if len(in.Tags) > 0 {
		added, err := s.bookmarks.AddTags(ctx, b.ID, in.Tags)
		if err != nil {
			s.logger.Error("Bookmark %d created but tagging failed: %v", b.ID, err)
			return b.ID, fmt.Errorf("failed to tag bookmark: %w", err)
		}
		if added < len(in.Tags) {
			s.logger.Debug("Bookmark %d: %d of %d tags associated", b.ID, added, len(in.Tags))
		}
	}

	s.logger.Info("Bookmark created successfully: id=%d", b.ID)
	return b.ID, nil
}

// Update replaces every writable field of bookmark id. Tags are replaced
// only when the input carries a tag list.
func (s *BookmarkService) Update(ctx context.Context, id int64, in domain.BookmarkInput) error {
	in = trimInput(in)
	s.logger.Info("Processing bookmark update: id=%d", id)

	if err := s.validateInput(ctx, in); err != nil {
		s.logger.Warn("Bookmark update validation failed: %v", err)
		return err
	}

	b := &domain.Bookmark{
		ID:          id,
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		IsPublic:    in.IsPublic,
	}
	found, err := s.bookmarks.Update(ctx, b)
	if err != nil {
		s.logger.Error("Failed to update bookmark %d: %v", id, err)
		return err
	}
	if !found {
		s.logger.Warn("Bookmark %d not found for update", id)
		return NotFoundError{Resource: "bookmark", ID: id}
	}

	if in.Tags != nil {
		if err := s.bookmarks.ReplaceTags(ctx, id, in.Tags); err != nil {
			s.logger.Error("Failed to replace tags of bookmark %d: %v", id, err)
			return err
		}
	}

	s.logger.Info("Bookmark %d updated successfully", id)
	return nil
}

// Delete removes a bookmark and its tag associations
func (s *BookmarkService) Delete(ctx context.Context, id int64) error {
	found, err := s.bookmarks.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete bookmark %d: %v", id, err)
		return err
	}
	if !found {
		s.logger.Warn("Bookmark %d not found for delete", id)
		return NotFoundError{Resource: "bookmark", ID: id}
	}

	s.logger.Info("Bookmark %d deleted", id)
	return nil
}

// RecordClick counts a visit of the bookmark's url
func (s *BookmarkService) RecordClick(ctx context.Context, id int64) error {
	found, err := s.bookmarks.IncrementClicks(ctx, id)
	if err != nil {
		s.logger.Error("Failed to record click for bookmark %d: %v", id, err)
		return err
	}
	if !found {
		return NotFoundError{Resource: "bookmark", ID: id}
	}
	return nil
}

// validateInput checks required fields and that a referenced category
// exists at write time
func (s *BookmarkService) validateInput(ctx context.Context, in domain.BookmarkInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}

	if in.CategoryID != nil {
		exists, err := s.categories.Exists(ctx, *in.CategoryID)
		if err != nil {
			return err
		}
		if !exists {
			return ValidationError{Message: fmt.Sprintf("category %d does not exist", *in.CategoryID)}
		}
	}
	return nil
}

func trimInput(in domain.BookmarkInput) domain.BookmarkInput {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func derefID(id *int64) interface{} {
	if id == nil {
		return "-"
	}
	return *id
}
