package entities

import "strings"

type Category string

const (
	CategoryFiction    Category = "FICTION"
	CategoryNonFiction Category = "NON-FICTION"
)

// Book is a single entry of the record file. Identity is positional: the
// index of the record in the file, there is no stable key.
type Book struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	SourceURL string `json:"source_url"` // "Goodreads" line in the record file
	ImageURL  string `json:"image_url"`
	// Category keeps the uppercased raw value. Use NormalizeCategory for display.
	Category string `json:"category,omitempty"`
}

// NeedsEnrichment reports whether the book has a fetchable source URL and at
// least one field that enrichment can fill.
func (b *Book) NeedsEnrichment() bool {
	if !strings.HasPrefix(b.SourceURL, "http") {
		return false
	}
	return b.Title == "" || b.Author == "" || b.ImageURL == ""
}

// MissingFields lists the enrichable fields that are still empty.
func (b *Book) MissingFields() []string {
	var missing []string
	if b.Title == "" {
		missing = append(missing, "title")
	}
	if b.Author == "" {
		missing = append(missing, "author")
	}
	if b.ImageURL == "" {
		missing = append(missing, "image")
	}
	return missing
}

// NormalizeCategory maps a raw category to the label shown on the page.
// Anything that is not a spelling of non-fiction, including empty, is FICTION.
func NormalizeCategory(raw string) Category {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "NON-FICTION", "NONFICTION":
		return CategoryNonFiction
	default:
		return CategoryFiction
	}
}
