package service

import (
	"context"
	"fmt"
	"testing"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
	"bookmarks/internal/repository"
)

type mockTagRepository struct {
	tags      []domain.Tag
	createErr error
}

func (m *mockTagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	return m.tags, nil
}

func (m *mockTagRepository) Create(ctx context.Context, t *domain.Tag) error {
	if m.createErr != nil {
		return m.createErr
	}
	t.ID = int64(len(m.tags) + 1)
	m.tags = append(m.tags, *t)
	return nil
}

func TestTaxonomyService_CreateCategory(t *testing.T) {
	tests := []struct {
		name      string
		input     domain.CategoryInput
		createErr error
		wantErr   bool
	}{
		{name: "valid", input: domain.CategoryInput{Name: " Work "}},
		{name: "blank name", input: domain.CategoryInput{Name: "  "}, wantErr: true},
		{
			name:      "duplicate",
			input:     domain.CategoryInput{Name: "Work"},
			createErr: fmt.Errorf("category 'Work': %w", repository.ErrDuplicate),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories := &mockCategoryRepository{categories: map[int64]string{}, createErr: tt.createErr}
			svc := NewTaxonomyService(categories, &mockTagRepository{}, logger.Discard())

			c, err := svc.CreateCategory(context.Background(), tt.input)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Errorf("CreateCategory() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateCategory() error = %v", err)
			}
			if c.Name != "Work" || c.ID == 0 {
				t.Errorf("CreateCategory() = %+v", c)
			}
		})
	}
}

func TestTaxonomyService_DeleteCategory(t *testing.T) {
	categories := &mockCategoryRepository{categories: map[int64]string{3: "Art"}}
	svc := NewTaxonomyService(categories, &mockTagRepository{}, logger.Discard())

	if err := svc.DeleteCategory(context.Background(), 3); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if err := svc.DeleteCategory(context.Background(), 3); !IsNotFound(err) {
		t.Errorf("second DeleteCategory() error = %v, want NotFoundError", err)
	}
}

func TestTaxonomyService_CreateTag(t *testing.T) {
	tests := []struct {
		name      string
		input     domain.TagInput
		createErr error
		wantColor string
		wantErr   bool
	}{
		{name: "default color", input: domain.TagInput{Name: "go"}, wantColor: DefaultTagColor},
		{name: "explicit color", input: domain.TagInput{Name: "go", Color: "#00add8"}, wantColor: "#00add8"},
		{name: "invalid color", input: domain.TagInput{Name: "go", Color: "blue"}, wantErr: true},
		{name: "missing name", input: domain.TagInput{Color: "#fff"}, wantErr: true},
		{
			name:      "duplicate",
			input:     domain.TagInput{Name: "go"},
			createErr: fmt.Errorf("tag 'go': %w", repository.ErrDuplicate),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := &mockTagRepository{createErr: tt.createErr}
			svc := NewTaxonomyService(&mockCategoryRepository{}, tags, logger.Discard())

			tag, err := svc.CreateTag(context.Background(), tt.input)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Errorf("CreateTag() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTag() error = %v", err)
			}
			if tag.Color != tt.wantColor {
				t.Errorf("CreateTag() color = %q, want %q", tag.Color, tt.wantColor)
			}
		})
	}
}
