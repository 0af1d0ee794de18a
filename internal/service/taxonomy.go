package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
	"bookmarks/internal/repository"
)

// DefaultTagColor is used when a tag is created without a color
const DefaultTagColor = "#6c757d"

// TagRepository interface for tag operations
type TagRepository interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Create(ctx context.Context, t *domain.Tag) error
}

// TaxonomyService manages categories and tags
type TaxonomyService struct {
	categories CategoryRepository
	tags       TagRepository
	logger     *logger.Logger
}

// NewTaxonomyService creates a new taxonomy service
func NewTaxonomyService(categories CategoryRepository, tags TagRepository, log *logger.Logger) *TaxonomyService {
	return &TaxonomyService{
		categories: categories,
		tags:       tags,
		logger:     log,
	}
}

// ListCategories returns all categories ordered by name
func (s *TaxonomyService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory adds a category with a unique name
func (s *TaxonomyService) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	c := &domain.Category{Name: in.Name}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ValidationError{Message: fmt.Sprintf("category '%s' already exists", in.Name)}
		}
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category; its bookmarks become uncategorized
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id int64) error {
	found, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return NotFoundError{Resource: "category", ID: id}
	}
	s.logger.Info("Category %d deleted", id)
	return nil
}

// ListTags returns all tags ordered by name
func (s *TaxonomyService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

// CreateTag adds a tag with a unique name
func (s *TaxonomyService) CreateTag(ctx context.Context, in domain.TagInput) (*domain.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Color == "" {
		in.Color = DefaultTagColor
	}

	t := &domain.Tag{Name: in.Name, Color: in.Color}
	if err := s.tags.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ValidationError{Message: fmt.Sprintf("tag '%s' already exists", in.Name)}
		}
		return nil, err
	}
	return t, nil
}
