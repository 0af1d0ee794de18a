package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
)

// BookmarkRepository handles database operations for bookmarks and their
// tag associations
type BookmarkRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewBookmarkRepository creates a new bookmark repository
func NewBookmarkRepository(db *sql.DB, log *logger.Logger) *BookmarkRepository {
	log.Info("Bookmark repository initialized")
	return &BookmarkRepository{
		db:     db,
		logger: log,
	}
}

const bookmarkColumns = `b.id, b.title, b.url, b.description, b.category_id, b.is_public,
		b.user_id, b.created_at, b.click_count`

const bookmarkFrom = `
		FROM bookmarks b
		LEFT JOIN categories c ON c.id = b.category_id`

// buildFilter turns the listing filters into a WHERE clause. Absent
// filters contribute nothing. The tag filter is an EXISTS so that it
// neither duplicates rows nor hides the bookmark's other tags.
func buildFilter(q domain.ListQuery) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.CategoryID != nil {
		clauses = append(clauses, "b.category_id = ?")
		args = append(args, *q.CategoryID)
	}

	if q.TagID != nil {
		clauses = append(clauses,
			"EXISTS (SELECT 1 FROM bookmark_tags ft WHERE ft.bookmark_id = b.id AND ft.tag_id = ?)")
		args = append(args, *q.TagID)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		clauses = append(clauses, `(unicode_lower(COALESCE(b.title, '')) LIKE ? ESCAPE '\'
			OR unicode_lower(COALESCE(b.description, '')) LIKE ? ESCAPE '\'
			OR unicode_lower(COALESCE(b.url, '')) LIKE ? ESCAPE '\'
			OR unicode_lower(COALESCE(c.name, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// List returns one page of bookmarks matching the query, newest first,
// each carrying its full tag list
func (r *BookmarkRepository) List(ctx context.Context, q domain.ListQuery) ([]domain.BookmarkWithTags, error) {
	start := time.Now()
	r.logger.Debug("Listing bookmarks: page=%d limit=%d", q.Page, q.Limit)

	where, args := buildFilter(q)
	query := `SELECT ` + bookmarkColumns + `, c.name` + bookmarkFrom + where + `
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Database query failed: %v (%v)", err, time.Since(start))
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	bookmarks := []domain.BookmarkWithTags{}
	for rows.Next() {
		b, err := scanBookmarkWithCategory(rows)
		if err != nil {
			rows.Close()
			r.logger.Error("Failed to scan bookmark row: %v (%v)", err, time.Since(start))
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		r.logger.Error("Error iterating bookmark rows: %v (%v)", err, time.Since(start))
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}
	rows.Close()

	if err := r.attachTags(ctx, bookmarks); err != nil {
		return nil, err
	}

	r.logger.Debug("Bookmarks listed successfully: %d rows (%v)", len(bookmarks), time.Since(start))
	return bookmarks, nil
}

// Count returns the number of distinct bookmarks matching the query filters
func (r *BookmarkRepository) Count(ctx context.Context, q domain.ListQuery) (int, error) {
	start := time.Now()

	where, args := buildFilter(q)
	query := `SELECT COUNT(*)` + bookmarkFrom + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		r.logger.Error("Database count failed: %v (%v)", err, time.Since(start))
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	r.logger.Debug("Bookmarks counted: %d (%v)", total, time.Since(start))
	return total, nil
}

// GetByID retrieves a bookmark with its category and tags; nil when absent
func (r *BookmarkRepository) GetByID(ctx context.Context, id int64) (*domain.BookmarkWithTags, error) {
	start := time.Now()
	r.logger.Debug("Getting bookmark by id: %d", id)

	query := `SELECT ` + bookmarkColumns + `, c.name` + bookmarkFrom + ` WHERE b.id = ?`

	b, err := scanBookmarkWithCategory(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		r.logger.Debug("No bookmark found for id %d (%v)", id, time.Since(start))
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Database query failed for bookmark %d: %v (%v)", id, err, time.Since(start))
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	list := []domain.BookmarkWithTags{b}
	if err := r.attachTags(ctx, list); err != nil {
		return nil, err
	}

	r.logger.Debug("Bookmark retrieved: id=%d (%v)", id, time.Since(start))
	return &list[0], nil
}

// Create inserts a bookmark and sets its id and creation time
func (r *BookmarkRepository) Create(ctx context.Context, b *domain.Bookmark) error {
	start := time.Now()
	r.logger.Debug("Creating bookmark: title='%s' url='%s' user='%s'", b.Title, b.URL, b.UserID)

	query := `
		INSERT INTO bookmarks (title, url, description, category_id, is_public, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	result, err := r.db.ExecContext(ctx, query,
		b.Title, b.URL, b.Description, nullableID(b.CategoryID), boolToInt(b.IsPublic), b.UserID)
	if err != nil {
		r.logger.Error("Database insert failed: %v (%v)", err, time.Since(start))
		return fmt.Errorf("failed to create bookmark: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("Failed to get last insert ID: %v (%v)", err, time.Since(start))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	b.ID = id
	r.logger.Info("Bookmark created successfully: id=%d (%v)", b.ID, time.Since(start))
	return nil
}

// AddTags associates tags with a bookmark. Existing pairs and unknown tag
// ids are ignored. It returns the number of new associations.
func (r *BookmarkRepository) AddTags(ctx context.Context, bookmarkID int64, tagIDs []int64) (int, error) {
	start := time.Now()
	added := 0

	query := `
		INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id)
		SELECT ?, id FROM tags WHERE id = ?
	`

	for _, tagID := range tagIDs {
		result, err := r.db.ExecContext(ctx, query, bookmarkID, tagID)
		if err != nil {
			r.logger.Error("Failed to tag bookmark %d with %d: %v (%v)", bookmarkID, tagID, err, time.Since(start))
			return added, fmt.Errorf("failed to add tag %d: %w", tagID, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	r.logger.Debug("Tagged bookmark %d: %d of %d new (%v)", bookmarkID, added, len(tagIDs), time.Since(start))
	return added, nil
}

// ReplaceTags drops all of a bookmark's tag associations and adds tagIDs
func (r *BookmarkRepository) ReplaceTags(ctx context.Context, bookmarkID int64, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookmark_tags WHERE bookmark_id = ?`, bookmarkID); err != nil {
		r.logger.Error("Failed to clear tags of bookmark %d: %v", bookmarkID, err)
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	_, err := r.AddTags(ctx, bookmarkID, tagIDs)
	return err
}

// Update replaces every writable field of a bookmark. It reports false
// when no row has the given id.
func (r *BookmarkRepository) Update(ctx context.Context, b *domain.Bookmark) (bool, error) {
	start := time.Now()
	r.logger.Debug("Updating bookmark %d", b.ID)

	query := `
		UPDATE bookmarks
		SET title = ?, url = ?, description = ?, category_id = ?, is_public = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		b.Title, b.URL, b.Description, nullableID(b.CategoryID), boolToInt(b.IsPublic), b.ID)
	if err != nil {
		r.logger.Error("Database update failed: %v (%v)", err, time.Since(start))
		return false, fmt.Errorf("failed to update bookmark: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	r.logger.Debug("Bookmark %d update affected %d rows (%v)", b.ID, n, time.Since(start))
	return n > 0, nil
}

// Delete removes a bookmark together with its tag associations
func (r *BookmarkRepository) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	r.logger.Debug("Deleting bookmark %d", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmark_tags WHERE bookmark_id = ?`, id); err != nil {
		r.logger.Error("Failed to delete tags of bookmark %d: %v (%v)", id, err, time.Since(start))
		return false, fmt.Errorf("failed to delete bookmark tags: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete bookmark %d: %v (%v)", id, err, time.Since(start))
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}

	r.logger.Info("Bookmark %d deleted: %d rows (%v)", id, n, time.Since(start))
	return n > 0, nil
}

// IncrementClicks bumps the click counter of a bookmark
func (r *BookmarkRepository) IncrementClicks(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE bookmarks SET click_count = click_count + 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to record click for bookmark %d: %v", id, err)
		return false, fmt.Errorf("failed to record click: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// All returns every bookmark row, newest first
func (r *BookmarkRepository) All(ctx context.Context) ([]domain.Bookmark, error) {
	start := time.Now()

	rows, err := r.db.QueryContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks b ORDER BY b.created_at DESC, b.id DESC`)
	if err != nil {
		r.logger.Error("Database query failed: %v (%v)", err, time.Since(start))
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []domain.Bookmark{}
	for rows.Next() {
		var b domain.Bookmark
		if err := scanBookmark(rows, &b); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}

	r.logger.Debug("Read %d bookmarks (%v)", len(bookmarks), time.Since(start))
	return bookmarks, nil
}

// Associations returns every bookmark/tag pair
func (r *BookmarkRepository) Associations(ctx context.Context) ([]domain.BookmarkTag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT bookmark_id, tag_id FROM bookmark_tags ORDER BY bookmark_id, tag_id`)
	if err != nil {
		r.logger.Error("Database query failed: %v", err)
		return nil, fmt.Errorf("failed to read bookmark tags: %w", err)
	}
	defer rows.Close()

	pairs := []domain.BookmarkTag{}
	for rows.Next() {
		var p domain.BookmarkTag
		if err := rows.Scan(&p.BookmarkID, &p.TagID); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark tag: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// attachTags loads the tags of every bookmark in one query, ordered by tag
// id so that names and colors line up
func (r *BookmarkRepository) attachTags(ctx context.Context, bookmarks []domain.BookmarkWithTags) error {
	if len(bookmarks) == 0 {
		return nil
	}

	index := make(map[int64]int, len(bookmarks))
	placeholders := make([]string, len(bookmarks))
	args := make([]interface{}, len(bookmarks))
	for i := range bookmarks {
		bookmarks[i].TagList = []domain.Tag{}
		index[bookmarks[i].ID] = i
		placeholders[i] = "?"
		args[i] = bookmarks[i].ID
	}

	query := `
		SELECT bt.bookmark_id, t.id, t.name, t.color
		FROM bookmark_tags bt
		JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY bt.bookmark_id, t.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load bookmark tags: %v", err)
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookmarkID int64
		var tag domain.Tag
		if err := rows.Scan(&bookmarkID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if i, ok := index[bookmarkID]; ok {
			bookmarks[i].TagList = append(bookmarks[i].TagList, tag)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookmark(row rowScanner, b *domain.Bookmark, extra ...interface{}) error {
	var categoryID sql.NullInt64
	var isPublic int
	dest := []interface{}{
		&b.ID, &b.Title, &b.URL, &b.Description, &categoryID, &isPublic,
		&b.UserID, &b.CreatedAt, &b.ClickCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		b.CategoryID = &id
	}
	b.IsPublic = isPublic != 0
	return nil
}

func scanBookmarkWithCategory(row rowScanner) (domain.BookmarkWithTags, error) {
	var b domain.BookmarkWithTags
	var categoryName sql.NullString
	if err := scanBookmark(row, &b.Bookmark, &categoryName); err != nil {
		return b, err
	}
	if categoryName.Valid {
		name := categoryName.String
		b.CategoryName = &name
	}
	return b, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
