package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bookmarks/internal/domain"
	"bookmarks/internal/logger"
)

// TransferService exports and imports whole bookmark collections
type TransferService struct {
	bookmarks  BookmarkRepository
	categories CategoryRepository
	tags       TagRepository
	logger     *logger.Logger
	now        func() time.Time
}

// NewTransferService creates a new transfer service
func NewTransferService(
	bookmarks BookmarkRepository,
	categories CategoryRepository,
	tags TagRepository,
	log *logger.Logger,
) *TransferService {
	return &TransferService{
		bookmarks:  bookmarks,
		categories: categories,
		tags:       tags,
		logger:     log,
		now:        time.Now,
	}
}

// Export snapshots every bookmark, category, tag and association
func (s *TransferService) Export(ctx context.Context) (*domain.ExportEnvelope, error) {
	env := &domain.ExportEnvelope{
		Version:    domain.ExportVersion,
		ExportedAt: s.now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		env.Bookmarks, err = s.bookmarks.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		env.Categories, err = s.categories.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		env.Tags, err = s.tags.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		env.BookmarkTags, err = s.bookmarks.Associations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Export failed: %v", err)
		return nil, fmt.Errorf("failed to export: %w", err)
	}

	s.logger.Info("Exported %d bookmarks, %d categories, %d tags",
		len(env.Bookmarks), len(env.Categories), len(env.Tags))
	return env, nil
}

// Import inserts every record as a new bookmark owned by owner. Records
// without a title or url are counted as errors and skipped; a category id
// that does not exist is dropped.
func (s *TransferService) Import(ctx context.Context, owner string, records []domain.ImportRecord) domain.ImportResult {
	imp := s.newImporter(owner)
	for i, rec := range records {
		imp.add(ctx, i, rec)
	}
	return s.finish(imp.result)
}

// ImportPayload decodes a raw import body and imports its records. Only a
// body that is neither a list nor an envelope is rejected; a record that
// fails to decode is counted as an error like any other bad record.
func (s *TransferService) ImportPayload(ctx context.Context, owner string, data []byte) (domain.ImportResult, error) {
	raws, err := domain.DecodeImportPayload(data)
	if err != nil {
		s.logger.Warn("Rejected import payload: %v", err)
		return domain.ImportResult{}, ValidationError{Message: "Invalid import data: " + err.Error()}
	}

	imp := s.newImporter(owner)
	for i, raw := range raws {
		rec, err := domain.DecodeImportRecord(raw)
		if err != nil {
			imp.result.Fail(i, err.Error())
			continue
		}
		imp.add(ctx, i, rec)
	}
	return s.finish(imp.result), nil
}

// importer carries the state of one import run
type importer struct {
	s      *TransferService
	owner  string
	known  map[int64]bool
	result domain.ImportResult
}

func (s *TransferService) newImporter(owner string) *importer {
	return &importer{s: s, owner: owner, known: map[int64]bool{}}
}

func (imp *importer) add(ctx context.Context, i int, rec domain.ImportRecord) {
	title := strings.TrimSpace(rec.Title)
	url := strings.TrimSpace(rec.URL)
	if title == "" || url == "" {
		imp.result.Fail(i, "title and url are required")
		return
	}

	categoryID := rec.Category()
	if categoryID != nil {
		exists, seen := imp.known[*categoryID]
		if !seen {
			var err error
			exists, err = imp.s.categories.Exists(ctx, *categoryID)
			if err != nil {
				imp.result.Fail(i, err.Error())
				return
			}
			imp.known[*categoryID] = exists
		}
		if !exists {
			categoryID = nil
		}
	}

	b := &domain.Bookmark{
		Title:       title,
		URL:         url,
		Description: strings.TrimSpace(rec.Description),
		CategoryID:  categoryID,
		IsPublic:    rec.Public(),
		UserID:      imp.owner,
	}
	if err := imp.s.bookmarks.Create(ctx, b); err != nil {
		imp.result.Fail(i, err.Error())
		return
	}
	imp.result.Imported++
}

func (s *TransferService) finish(result domain.ImportResult) domain.ImportResult {
	for _, f := range result.Failures {
		s.logger.Warn("Import record %d rejected: %s", f.Index, f.Reason)
	}
	s.logger.Info("Import finished: %d imported, %d errors", result.Imported, result.Errors)
	return result
}
