package metadata

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Fetcher retrieves candidate book fields from a source page.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (*Candidate, error)
}

// EnrichmentSummary describes the outcome of enriching a list of books.
type EnrichmentSummary struct {
	Attempted int  `json:"attempted"`
	Enriched  int  `json:"enriched"`
	Failed    int  `json:"failed"`
	Updated   bool `json:"updated"`
}

// Enricher fills missing book fields from each book's source page.
type Enricher struct {
	fetcher Fetcher
}

// NewEnricher creates a new Enricher backed by the given fetcher.
func NewEnricher(fetcher Fetcher) *Enricher {
	return &Enricher{
		fetcher: fetcher,
	}
}

// EnrichBook fetches the source page of a qualifying book and fills its empty
// fields. Books that do not need enrichment are returned untouched without a
// fetch. The returned slice names the fields that were filled.
func (e *Enricher) EnrichBook(ctx context.Context, book *entities.Book) ([]string, error) {
	if !book.NeedsEnrichment() {
		return nil, nil
	}

	candidate, err := e.fetcher.Fetch(ctx, book.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", book.SourceURL, err)
	}
	if candidate == nil {
		return nil, nil
	}

	return applyCandidate(book, candidate), nil
}

// EnrichAll enriches books in place, one at a time and in order. A failed
// fetch is logged and the book is kept as parsed; only cancellation of ctx
// stops the loop early.
func (e *Enricher) EnrichAll(ctx context.Context, books []entities.Book) (*EnrichmentSummary, error) {
	summary := &EnrichmentSummary{}

	for i := range books {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		book := &books[i]
		if !book.NeedsEnrichment() {
			continue
		}

		summary.Attempted++
		fmt.Printf("  Fetching data from: %s\n", book.SourceURL)

		fieldsUpdated, err := e.EnrichBook(ctx, book)
		if err != nil {
			summary.Failed++
			log.Printf("WARNING: Failed to fetch book data: %v", err)
			continue
		}

		if len(fieldsUpdated) > 0 {
			summary.Enriched++
			summary.Updated = true
		}
	}

	return summary, nil
}

// applyCandidate copies non-empty candidate values into empty book fields.
// Fields that already have a value are never overwritten.
func applyCandidate(book *entities.Book, candidate *Candidate) []string {
	var fieldsUpdated []string

	if book.Title == "" && candidate.Title != "" {
		book.Title = candidate.Title
		fieldsUpdated = append(fieldsUpdated, "title")
	}

	if book.Author == "" && candidate.Author != "" {
		book.Author = candidate.Author
		fieldsUpdated = append(fieldsUpdated, "author")
	}

	if book.ImageURL == "" && candidate.ImageURL != "" {
		book.ImageURL = candidate.ImageURL
		fieldsUpdated = append(fieldsUpdated, "image")
	}

	return fieldsUpdated
}
