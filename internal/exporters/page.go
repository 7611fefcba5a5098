package exporters

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/utils"
)

// ErrRegionNotFound is returned when the page has no books grid to replace.
var ErrRegionNotFound = errors.New("books region not found in page")

const (
	DefaultRegionOpen       = `<div class="books-grid">`
	DefaultPlaceholderImage = "https://via.placeholder.com/300x450?text=Book+Cover"

	closeIndent = "          "
)

// DefaultRegionClose is the tag sequence that ends the books grid.
var DefaultRegionClose = []string{"</div>", "</section>"}

// Region is the part of the page that gets regenerated: everything after
// Open up to the first occurrence of the Close tag sequence (whitespace is
// allowed between the close tags). The match is textual, so the grid must be
// closed right before its enclosing section and cards must not contain that
// same close sequence.
type Region struct {
	Open  string
	Close []string
}

// NewRegion builds a region, falling back to the books grid defaults for
// empty arguments.
func NewRegion(open string, closeTags []string) Region {
	if open == "" {
		open = DefaultRegionOpen
	}
	if len(closeTags) == 0 {
		closeTags = DefaultRegionClose
	}
	return Region{Open: open, Close: closeTags}
}

func (r Region) pattern() *regexp.Regexp {
	closeParts := make([]string, len(r.Close))
	for i, tag := range r.Close {
		closeParts[i] = regexp.QuoteMeta(tag)
	}
	return regexp.MustCompile(regexp.QuoteMeta(r.Open) + `[\s\S]*?(` + strings.Join(closeParts, `\s*`) + `)`)
}

// Splice replaces the inner content of the first region in doc with content.
// The matched close sequence is kept as it appears in the document.
func (r Region) Splice(doc, content string) (string, error) {
	loc := r.pattern().FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, ErrRegionNotFound
	}

	closing := doc[loc[2]:loc[3]]

	var builder strings.Builder
	builder.Grow(len(doc) + len(content))
	builder.WriteString(doc[:loc[0]])
	builder.WriteString(r.Open)
	builder.WriteString("\n")
	builder.WriteString(content)
	builder.WriteString("\n")
	builder.WriteString(closeIndent)
	builder.WriteString(closing)
	builder.WriteString(doc[loc[1]:])

	return builder.String(), nil
}

// RenderCards generates one book card per book, in order.
func RenderCards(books []entities.Book, placeholderImage string) string {
	if placeholderImage == "" {
		placeholderImage = DefaultPlaceholderImage
	}

	cards := make([]string, 0, len(books))
	for i, book := range books {
		cards = append(cards, renderCard(i+1, book, placeholderImage))
	}
	return strings.Join(cards, "\n\n")
}

func renderCard(number int, book entities.Book, placeholderImage string) string {
	link := book.SourceURL
	if link == "" {
		link = "#"
	}
	image := book.ImageURL
	if image == "" {
		image = placeholderImage
	}
	title := book.Title
	if title == "" {
		title = "Untitled"
	}
	author := book.Author
	if author == "" {
		author = "Unknown Author"
	}
	alt := book.Title
	if alt == "" {
		alt = "Book"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "            <!-- Book Card %d -->\n", number)
	builder.WriteString("            <article class=\"book-card\">\n")
	fmt.Fprintf(&builder, "              <a href=\"%s\" target=\"_blank\" rel=\"noopener\" class=\"book-image-link\">\n", utils.EscapeHTML(link))
	fmt.Fprintf(&builder, "                <img src=\"%s\" alt=\"%s cover\" class=\"book-image\" />\n", utils.EscapeHTML(image), utils.EscapeHTML(alt))
	builder.WriteString("              </a>\n")
	builder.WriteString("              <div class=\"book-info\">\n")
	fmt.Fprintf(&builder, "                <span class=\"book-category\">%s</span>\n", entities.NormalizeCategory(book.Category))
	fmt.Fprintf(&builder, "                <h3 class=\"book-title\">%s</h3>\n", utils.EscapeHTML(title))
	fmt.Fprintf(&builder, "                <p class=\"book-author\">%s</p>\n", utils.EscapeHTML(author))
	builder.WriteString("              </div>\n")
	builder.WriteString("            </article>")

	return builder.String()
}

// PageExporter regenerates the books region of a static HTML page.
type PageExporter struct {
	PagePath         string
	Region           Region
	PlaceholderImage string
}

func NewPageExporter(pagePath string, region Region, placeholderImage string) *PageExporter {
	return &PageExporter{
		PagePath:         pagePath,
		Region:           region,
		PlaceholderImage: placeholderImage,
	}
}

// Export rewrites the page with cards for books. When the region is missing
// the page is left untouched and ErrRegionNotFound is returned.
func (exporter *PageExporter) Export(books []entities.Book) error {
	page, err := os.ReadFile(exporter.PagePath)
	if err != nil {
		return fmt.Errorf("failed to read page %s: %w", exporter.PagePath, err)
	}

	updated, err := exporter.Region.Splice(string(page), RenderCards(books, exporter.PlaceholderImage))
	if err != nil {
		return err
	}

	return writeFileAtomic(exporter.PagePath, []byte(updated))
}
