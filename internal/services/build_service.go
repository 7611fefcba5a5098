package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofrs/flock"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/parsers"
)

const lockRetryDelay = 100 * time.Millisecond

// BuildResult contains the outcome of one pipeline run.
type BuildResult struct {
	Books             []entities.Book
	Summary           metadata.EnrichmentSummary
	NoBooks           bool
	RecordFileWritten bool
	PageWritten       bool
}

// BuildService runs the catalog pipeline: parse the record file, enrich,
// write the record file back when something changed and regenerate the page.
type BuildService struct {
	recordFile  string
	enricher    BookEnricher
	page        PageExporter
	lock        *flock.Flock
	lockTimeout time.Duration
}

// NewBuildService creates a BuildService. Runs are serialized across
// processes through a lock file next to the record file.
func NewBuildService(recordFile string, enricher BookEnricher, page PageExporter, lockTimeout time.Duration) *BuildService {
	return &BuildService{
		recordFile:  recordFile,
		enricher:    enricher,
		page:        page,
		lock:        flock.New(recordFile + ".lock"),
		lockTimeout: lockTimeout,
	}
}

// Run executes the pipeline once. An empty record file is a successful no-op.
// Fetch failures and a missing page region are logged, not returned; file
// system errors abort the run.
func (s *BuildService) Run(ctx context.Context) (*BuildResult, error) {
	if err := s.acquireLock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			log.Printf("WARNING: Failed to release lock %s: %v", s.lock.Path(), err)
		}
	}()

	books, err := parsers.ParseRecordFile(s.recordFile)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Books: books}

	if len(books) == 0 {
		log.Printf("WARNING: No books found in %s", s.recordFile)
		result.NoBooks = true
		return result, nil
	}

	fmt.Printf("📚 Processing %d books...\n", len(books))

	summary, err := s.enricher.EnrichAll(ctx, books)
	if err != nil {
		return nil, fmt.Errorf("enrich books: %w", err)
	}
	result.Summary = *summary

	if summary.Updated {
		if err := exporters.WriteRecordFile(s.recordFile, books); err != nil {
			return nil, err
		}
		result.RecordFileWritten = true
		fmt.Printf("✓ Updated %s with fetched data\n", s.recordFile)
	}

	if err := s.page.Export(books); err != nil {
		if !errors.Is(err, exporters.ErrRegionNotFound) {
			return nil, err
		}
		log.Printf("WARNING: Books grid not found in page, page left unchanged: %v", err)
		return result, nil
	}
	result.PageWritten = true
	fmt.Printf("✓ Updated page with %d books\n", len(books))

	return result, nil
}

func (s *BuildService) acquireLock(ctx context.Context) error {
	lockCtx := ctx
	if s.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockTimeout)
		defer cancel()
	}

	locked, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("acquire lock %s: another build is running", s.lock.Path())
	}
	return nil
}
