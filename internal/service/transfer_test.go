package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"bookmarks/internal/database"
	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
	"bookmarks/internal/repository"
)

type testStore struct {
	db         *sql.DB
	bookmarks  *repository.BookmarkRepository
	categories *repository.CategoryRepository
	tags       *repository.TagRepository
}

func setupStore(t *testing.T) testStore {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	log := logger.Discard()
	return testStore{
		db:         db,
		bookmarks:  repository.NewBookmarkRepository(db, log),
		categories: repository.NewCategoryRepository(db, log),
		tags:       repository.NewTagRepository(db, log),
	}
}

func (s testStore) count(t *testing.T) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM bookmarks`).Scan(&n); err != nil {
		t.Fatalf("count bookmarks: %v", err)
	}
	return n
}

func TestTransferService_ExportImportRoundTrip(t *testing.T) {
	store := setupStore(t)
	log := logger.Discard()
	bookmarks := NewBookmarkService(store.bookmarks, store.categories, nil, 20, log)
	taxonomy := NewTaxonomyService(store.categories, store.tags, log)
	transfer := NewTransferService(store.bookmarks, store.categories, store.tags, log)
	ctx := context.Background()

	work, err := taxonomy.CreateCategory(ctx, domain.CategoryInput{Name: "Work"})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	tag, err := taxonomy.CreateTag(ctx, domain.TagInput{Name: "go"})
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		in := domain.BookmarkInput{
			Title:      fmt.Sprintf("Bookmark %d", i),
			URL:        fmt.Sprintf("https://example.com/%d", i),
			CategoryID: &work.ID,
			IsPublic:   i%2 == 0,
			Tags:       []int64{tag.ID},
		}
		if _, err := bookmarks.Create(ctx, "default", in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	env, err := transfer.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if env.Version != domain.ExportVersion || len(env.Bookmarks) != 3 || len(env.Categories) != 1 ||
		len(env.Tags) != 1 || len(env.BookmarkTags) != 3 {
		t.Fatalf("Export() = %+v", env)
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}

	result, err := transfer.ImportPayload(ctx, "default", data)
	if err != nil {
		t.Fatalf("ImportPayload() error = %v", err)
	}
	if result.Imported != 3 || result.Errors != 0 {
		t.Errorf("ImportPayload() = %+v, want 3 imported and 0 errors", result)
	}
	if n := store.count(t); n != 6 {
		t.Errorf("bookmarks after import = %d, want 6", n)
	}

	page, err := bookmarks.List(ctx, domain.ListQuery{CategoryID: &work.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Pagination.Total != 6 {
		t.Errorf("category total after import = %d, want 6", page.Pagination.Total)
	}
}

func TestTransferService_Import(t *testing.T) {
	store := setupStore(t)
	transfer := NewTransferService(store.bookmarks, store.categories, store.tags, logger.Discard())
	ctx := context.Background()

	payload := `{"bookmarks": [
		{"title": "ok", "url": "https://ok", "is_public": 1},
		{"title": "", "url": "https://missing-title"},
		{"title": "no url"},
		{"title": "private", "url": "https://private", "is_private": true, "category_id": 77}
	]}`

	result, err := transfer.ImportPayload(ctx, "default", []byte(payload))
	if err != nil {
		t.Fatalf("ImportPayload() error = %v", err)
	}
	if result.Imported != 2 || result.Errors != 2 {
		t.Errorf("ImportPayload() = %+v, want 2 imported and 2 errors", result)
	}
	if len(result.Failures) != 2 || result.Failures[0].Index != 1 || result.Failures[1].Index != 2 {
		t.Errorf("failures = %+v", result.Failures)
	}

	all, err := store.bookmarks.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("stored bookmarks = %d, want 2", len(all))
	}
	for _, b := range all {
		switch b.Title {
		case "ok":
			if !b.IsPublic {
				t.Error("numeric is_public not honored")
			}
		case "private":
			if b.IsPublic {
				t.Error("is_private not honored")
			}
			if b.CategoryID != nil {
				t.Errorf("unknown category kept: %d", *b.CategoryID)
			}
		}
	}
}

func TestTransferService_ImportPayloadRejectsBadShape(t *testing.T) {
	store := setupStore(t)
	transfer := NewTransferService(store.bookmarks, store.categories, store.tags, logger.Discard())

	for _, payload := range []string{``, `"text"`, `{"bookmarks": "nope"}`, `{"items": []}`, `[{"title": `} {
		if _, err := transfer.ImportPayload(context.Background(), "default", []byte(payload)); !IsValidation(err) {
			t.Errorf("ImportPayload(%q) error = %v, want ValidationError", payload, err)
		}
	}
	if n := store.count(t); n != 0 {
		t.Errorf("bookmarks after rejected payloads = %d, want 0", n)
	}
}

func TestTransferService_ImportPayloadSkipsBadlyTypedRecords(t *testing.T) {
	tests := []struct {
		name string
		bad  string
	}{
		{name: "non-numeric category id", bad: `{"title":"x","url":"https://b","category_id":"abc"}`},
		{name: "non-boolean is_private", bad: `{"title":"x","url":"https://b","is_private":"yes"}`},
		{name: "numeric title", bad: `{"title":42,"url":"https://b"}`},
		{name: "bare string element", bad: `"garbage"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			transfer := NewTransferService(store.bookmarks, store.categories, store.tags, logger.Discard())

			payload := `[{"title":"ok","url":"https://a"},` + tt.bad + `]`
			result, err := transfer.ImportPayload(context.Background(), "default", []byte(payload))
			if err != nil {
				t.Fatalf("ImportPayload() error = %v", err)
			}
			if result.Imported != 1 || result.Errors != 1 {
				t.Errorf("ImportPayload() = %+v, want 1 imported and 1 error", result)
			}
			if len(result.Failures) != 1 || result.Failures[0].Index != 1 {
				t.Errorf("failures = %+v", result.Failures)
			}
			if n := store.count(t); n != 1 {
				t.Errorf("bookmarks after import = %d, want 1", n)
			}
		})
	}
}

func TestBookmarkService_PaginationAgainstStore(t *testing.T) {
	store := setupStore(t)
	svc := NewBookmarkService(store.bookmarks, store.categories, nil, 20, logger.Discard())
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		in := domain.BookmarkInput{Title: fmt.Sprintf("b%d", i), URL: fmt.Sprintf("https://b/%d", i)}
		if _, err := svc.Create(ctx, "default", in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := svc.List(ctx, domain.ListQuery{Page: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := domain.Pagination{Page: 2, Limit: 20, Total: 25, Pages: 2}
	if page.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", page.Pagination, want)
	}
	if len(page.Bookmarks) != 5 {
		t.Errorf("page 2 has %d bookmarks, want 5", len(page.Bookmarks))
	}

	// A failed create writes nothing
	if _, err := svc.Create(ctx, "default", domain.BookmarkInput{Title: "x"}); !IsValidation(err) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if n := store.count(t); n != 25 {
		t.Errorf("bookmarks after failed create = %d, want 25", n)
	}

	// Past the last page
	page, err = svc.List(ctx, domain.ListQuery{Page: 9})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Bookmarks) != 0 || page.Pagination.Total != 25 {
		t.Errorf("page 9 = %d bookmarks, total %d", len(page.Bookmarks), page.Pagination.Total)
	}
}

func TestImageService_WithSQLiteCache(t *testing.T) {
	store := setupStore(t)
	cache := repository.NewCacheRepository(store.db, logger.Discard())
	source := &mockImageSource{image: &domain.Image{URL: "https://www.bing.com/z.jpg", Title: "Fjord"}}
	svc := NewImageService(cache, source, 24*time.Hour, logger.Discard())
	ctx := context.Background()

	svc.Get(ctx, "dark")
	got := svc.Get(ctx, "dark")
	if got.Title != "Fjord" || source.calls != 1 {
		t.Errorf("Get() = %+v after %d upstream calls", got, source.calls)
	}
}
