package metadata

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrlokans/bookshelf/internal/utils"
)

// Candidate holds the field values scraped from a book page. Any field may
// be empty when nothing on the page matched.
type Candidate struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (c Candidate) IsEmpty() bool {
	return c.Title == "" && c.Author == "" && c.ImageURL == ""
}

// Extractor pulls book fields out of raw page HTML. Results are best effort:
// a field that cannot be found is left empty, extraction never fails.
type Extractor interface {
	Extract(html string) Candidate
}

const (
	ExtractorPatterns = "patterns"
	ExtractorDocument = "document"
)

// NewExtractor returns the extractor registered under name, defaulting to
// the pattern based one.
func NewExtractor(name string) Extractor {
	if strings.EqualFold(strings.TrimSpace(name), ExtractorDocument) {
		return NewDocumentExtractor()
	}
	return NewPatternExtractor()
}

// PatternExtractor matches an ordered list of regular expressions per field
// against the raw markup. Structural patterns come first, meta tags last.
type PatternExtractor struct {
	titlePatterns  []*regexp.Regexp
	authorPatterns []*regexp.Regexp
	imagePatterns  []*regexp.Regexp
}

func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{
		titlePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?s)<h1[^>]*data-testid="bookTitle"[^>]*>(.*?)</h1>`),
			regexp.MustCompile(`(?s)<h1[^>]*class="[^"]*bookTitle[^"]*"[^>]*>(.*?)</h1>`),
			regexp.MustCompile(`(?i)<meta\s+property="og:title"\s+content="([^"]+)"`),
		},
		authorPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?s)<span[^>]*class="[^"]*authorName[^"]*"[^>]*>(.*?)</span>`),
			regexp.MustCompile(`(?s)<a[^>]*class="[^"]*authorName[^"]*"[^>]*>(.*?)</a>`),
			regexp.MustCompile(`(?s)<span[^>]*itemprop="author"[^>]*>.*?<span[^>]*itemprop="name"[^>]*>(.*?)</span>`),
			regexp.MustCompile(`(?s)<a[^>]*itemprop="author"[^>]*>.*?<span[^>]*itemprop="name"[^>]*>(.*?)</span>`),
			regexp.MustCompile(`(?i)<meta\s+name="author"\s+content="([^"]+)"`),
			regexp.MustCompile(`(?s)<span[^>]*class="[^"]*ContributorLink[^"]*"[^>]*>(.*?)</span>`),
			regexp.MustCompile(`(?i)by\s+<a[^>]*>(.*?)</a>`),
		},
		imagePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<img[^>]*class="[^"]*ResponsiveImage[^"]*"[^>]*src="([^"]+)"`),
			regexp.MustCompile(`(?i)<img[^>]*id="coverImage"[^>]*src="([^"]+)"`),
			regexp.MustCompile(`(?i)<meta\s+property="og:image"\s+content="([^"]+)"`),
		},
	}
}

func (e *PatternExtractor) Extract(html string) Candidate {
	return Candidate{
		Title:    firstMatch(html, e.titlePatterns),
		Author:   firstMatch(html, e.authorPatterns),
		ImageURL: firstMatch(html, e.imagePatterns),
	}
}

// firstMatch returns the first non-empty capture, cleaned of markup.
func firstMatch(html string, patterns []*regexp.Regexp) string {
	for _, pattern := range patterns {
		matches := pattern.FindStringSubmatch(html)
		if matches == nil {
			continue
		}
		if value := utils.CleanScrapedText(matches[1]); value != "" {
			return value
		}
	}
	return ""
}

// DocumentExtractor looks the same fields up with CSS selectors on a parsed
// document instead of matching raw text.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

type selectorLookup struct {
	selector string
	attr     string // empty means element text
}

var (
	titleLookups = []selectorLookup{
		{selector: `h1[data-testid="bookTitle"]`},
		{selector: `h1[class*="bookTitle"]`},
		{selector: `meta[property="og:title"]`, attr: "content"},
	}
	authorLookups = []selectorLookup{
		{selector: `span[class*="authorName"]`},
		{selector: `a[class*="authorName"]`},
		{selector: `[itemprop="author"] [itemprop="name"]`},
		{selector: `meta[name="author"]`, attr: "content"},
		{selector: `span[class*="ContributorLink"]`},
	}
	imageLookups = []selectorLookup{
		{selector: `img[class*="ResponsiveImage"]`, attr: "src"},
		{selector: `img#coverImage`, attr: "src"},
		{selector: `meta[property="og:image"]`, attr: "content"},
	}
)

func (e *DocumentExtractor) Extract(html string) Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Candidate{}
	}

	return Candidate{
		Title:    firstSelection(doc, titleLookups),
		Author:   firstSelection(doc, authorLookups),
		ImageURL: firstSelection(doc, imageLookups),
	}
}

func firstSelection(doc *goquery.Document, lookups []selectorLookup) string {
	for _, lookup := range lookups {
		selection := doc.Find(lookup.selector).First()
		if selection.Length() == 0 {
			continue
		}

		var value string
		if lookup.attr == "" {
			value = selection.Text()
		} else {
			value, _ = selection.Attr(lookup.attr)
		}

		if value = strings.Join(strings.Fields(value), " "); value != "" {
			return value
		}
	}
	return ""
}
