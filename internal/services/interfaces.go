package services

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

// BookEnricher fills missing fields of books in place.
type BookEnricher interface {
	EnrichAll(ctx context.Context, books []entities.Book) (*metadata.EnrichmentSummary, error)
}

// PageExporter regenerates the rendered page from books.
type PageExporter interface {
	Export(books []entities.Book) error
}
