package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Bookmark is a stored bookmark row
type Bookmark struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Description string    `json:"description" db:"description"`
	CategoryID  *int64    `json:"category_id" db:"category_id"`
	IsPublic    bool      `json:"is_public" db:"is_public"`
	UserID      string    `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ClickCount  int       `json:"click_count" db:"click_count"`
}

// Category groups bookmarks under a display label
type Category struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	BookmarkCount int       `json:"bookmark_count"`
}

// Tag is a colored label attached to bookmarks
type Tag struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Color string `json:"color" db:"color"`
}

// BookmarkTag links a bookmark to a tag
type BookmarkTag struct {
	BookmarkID int64 `json:"bookmark_id" db:"bookmark_id"`
	TagID      int64 `json:"tag_id" db:"tag_id"`
}

// BookmarkWithTags is a bookmark joined with its category name and tags.
//
// Tags are kept in a stable order. The comma-joined tags, tag_ids and
// tag_colors columns are derived from the same slice, so index i of each
// refers to the same tag.
type BookmarkWithTags struct {
	Bookmark
	CategoryName    *string `json:"category_name"`
	TagList         []Tag   `json:"tag_list"`
	DescriptionHTML string  `json:"description_html,omitempty"`
}

// TagColumns returns the comma-joined names, ids and colors, or nils when
// the bookmark has no tags.
func (b BookmarkWithTags) TagColumns() (names, ids, colors *string) {
	if len(b.TagList) == 0 {
		return nil, nil, nil
	}

	n := make([]string, len(b.TagList))
	i := make([]string, len(b.TagList))
	c := make([]string, len(b.TagList))
	for idx, tag := range b.TagList {
		n[idx] = tag.Name
		i[idx] = strconv.FormatInt(tag.ID, 10)
		c[idx] = tag.Color
	}

	joinedNames := strings.Join(n, ",")
	joinedIDs := strings.Join(i, ",")
	joinedColors := strings.Join(c, ",")
	return &joinedNames, &joinedIDs, &joinedColors
}

// MarshalJSON adds the aggregated tag columns
func (b BookmarkWithTags) MarshalJSON() ([]byte, error) {
	type plain BookmarkWithTags
	if b.TagList == nil {
		b.TagList = []Tag{}
	}
	names, ids, colors := b.TagColumns()
	return json.Marshal(struct {
		plain
		Tags      *string `json:"tags"`
		TagIDs    *string `json:"tag_ids"`
		TagColors *string `json:"tag_colors"`
	}{
		plain:     plain(b),
		Tags:      names,
		TagIDs:    ids,
		TagColors: colors,
	})
}

// ListQuery holds the listing filters and page window
type ListQuery struct {
	Page       int
	Limit      int
	CategoryID *int64
	TagID      *int64
	Search     string
}

// Offset is the number of rows skipped before the page starts
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Pagination describes the page window of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count as ceil(total/limit); an empty
// result has zero pages.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// BookmarkPage is one page of a bookmark listing
type BookmarkPage struct {
	Bookmarks  []BookmarkWithTags `json:"bookmarks"`
	Pagination Pagination         `json:"pagination"`
}

// BookmarkInput carries the writable fields of a bookmark.
// Tags is nil when the caller did not send a tag list.
type BookmarkInput struct {
	Title       string  `json:"title" validate:"required"`
	URL         string  `json:"url" validate:"required"`
	Description string  `json:"description"`
	CategoryID  *int64  `json:"category_id"`
	IsPublic    bool    `json:"is_public"`
	Tags        []int64 `json:"tags"`
}

// CategoryInput is the payload for creating a category
type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

// TagInput is the payload for creating a tag
type TagInput struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// Image is the background image of the day
type Image struct {
	URL       string `json:"url"`
	Copyright string `json:"copyright,omitempty"`
	Title     string `json:"title,omitempty"`

	// Cached holds the payload an image was read back from, if any.
	// It is written out in place of the fields above.
	Cached string `json:"-"`
}

// MarshalJSON writes a cached payload as it was stored
func (i Image) MarshalJSON() ([]byte, error) {
	if i.Cached != "" {
		return []byte(i.Cached), nil
	}
	type plain Image
	return json.Marshal(plain(i))
}
