package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB, log *logger.Logger) *CategoryRepository {
	log.Info("Category repository initialized")
	return &CategoryRepository{
		db:     db,
		logger: log,
	}
}

// List returns all categories by name with their bookmark counts
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	start := time.Now()

	query := `
		SELECT c.id, c.name, c.created_at, COUNT(b.id)
		FROM categories c
		LEFT JOIN bookmarks b ON b.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Database query failed: %v (%v)", err, time.Since(start))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.BookmarkCount); err != nil {
			r.logger.Error("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	r.logger.Debug("Categories listed: %d (%v)", len(categories), time.Since(start))
	return categories, nil
}

// Exists reports whether a category with the id exists
func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to look up category %d: %v", id, err)
		return false, fmt.Errorf("failed to look up category: %w", err)
	}
	return true, nil
}

// Create inserts a category and sets its id
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, created_at) VALUES (?, CURRENT_TIMESTAMP)`, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category '%s': %w", c.Name, ErrDuplicate)
		}
		r.logger.Error("Database insert failed: %v", err)
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	c.ID = id
	c.CreatedAt = time.Now().UTC()
	r.logger.Info("Category created: id=%d name='%s'", c.ID, c.Name)
	return nil
}

// Delete removes a category. Bookmarks keep their now dangling reference.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete category %d: %v", id, err)
		return false, fmt.Errorf("failed to delete category: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// TagRepository handles database operations for tags
type TagRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sql.DB, log *logger.Logger) *TagRepository {
	log.Info("Tag repository initialized")
	return &TagRepository{
		db:     db,
		logger: log,
	}
}

// List returns all tags by name
func (r *TagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		r.logger.Error("Database query failed: %v (%v)", err, time.Since(start))
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			r.logger.Error("Failed to scan tag row: %v", err)
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	r.logger.Debug("Tags listed: %d (%v)", len(tags), time.Since(start))
	return tags, nil
}

// Create inserts a tag and sets its id
func (r *TagRepository) Create(ctx context.Context, t *domain.Tag) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (name, color, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, t.Name, t.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tag '%s': %w", t.Name, ErrDuplicate)
		}
		r.logger.Error("Database insert failed: %v", err)
		return fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	t.ID = id
	r.logger.Info("Tag created: id=%d name='%s'", t.ID, t.Name)
	return nil
}
