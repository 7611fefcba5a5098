package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html>
<body>
        <section class="books">
          <div class="books-grid">
          </div>
        </section>
</body>
</html>
`

type stubFetcher struct {
	candidate *metadata.Candidate
	calls     []string
}

func (s *stubFetcher) Fetch(ctx context.Context, sourceURL string) (*metadata.Candidate, error) {
	s.calls = append(s.calls, sourceURL)
	return s.candidate, nil
}

type catalog struct {
	dir        string
	recordFile string
	pageFile   string
}

func newCatalog(t *testing.T, records, page string) catalog {
	t.Helper()
	dir := t.TempDir()
	c := catalog{
		dir:        dir,
		recordFile: filepath.Join(dir, "books.md"),
		pageFile:   filepath.Join(dir, "books.html"),
	}
	require.NoError(t, os.WriteFile(c.recordFile, []byte(records), 0644))
	require.NoError(t, os.WriteFile(c.pageFile, []byte(page), 0644))
	return c
}

func (c catalog) read(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func newService(c catalog, fetcher metadata.Fetcher) *BuildService {
	page := exporters.NewPageExporter(c.pageFile, exporters.NewRegion("", nil), "")
	return NewBuildService(c.recordFile, metadata.NewEnricher(fetcher), page, time.Second)
}

func TestRun_EnrichesAndRewrites(t *testing.T) {
	records := `# Books

## Book 1
- Title: 
- Author: Jane Doe
- Goodreads: http://example.com/book
- Image: 
`
	c := newCatalog(t, records, testPage)
	fetcher := &stubFetcher{candidate: &metadata.Candidate{
		Title:    "Found Title",
		Author:   "",
		ImageURL: "http://img/cover.jpg",
	}}

	result, err := newService(c, fetcher).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Books, 1)
	assert.Equal(t, entities.Book{
		Title:     "Found Title",
		Author:    "Jane Doe",
		SourceURL: "http://example.com/book",
		ImageURL:  "http://img/cover.jpg",
	}, result.Books[0])
	assert.True(t, result.RecordFileWritten)
	assert.True(t, result.PageWritten)
	assert.Equal(t, []string{"http://example.com/book"}, fetcher.calls)

	assert.Equal(t, exporters.SerializeRecords(result.Books), c.read(t, c.recordFile))

	page := c.read(t, c.pageFile)
	assert.Contains(t, page, `<h3 class="book-title">Found Title</h3>`)
	assert.Contains(t, page, `<p class="book-author">Jane Doe</p>`)
	assert.Contains(t, page, `<img src="http://img/cover.jpg"`)
	assert.Contains(t, page, `<a href="http://example.com/book"`)
	assert.Equal(t, 1, countCards(page))
}

func TestRun_NoBooksIsNoop(t *testing.T) {
	c := newCatalog(t, "# Books\n\n", testPage)
	fetcher := &stubFetcher{}

	result, err := newService(c, fetcher).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.NoBooks)
	assert.False(t, result.RecordFileWritten)
	assert.False(t, result.PageWritten)
	assert.Equal(t, testPage, c.read(t, c.pageFile))
	assert.Equal(t, "# Books\n\n", c.read(t, c.recordFile))
}

func TestRun_CompleteBooksAreNotFetched(t *testing.T) {
	records := "## Book 1\n- Title: Dune\n- Author: Frank Herbert\n- Goodreads: https://gr/1\n- Image: https://img/dune.jpg\n- Category: fiction\n"
	c := newCatalog(t, records, testPage)
	fetcher := &stubFetcher{candidate: &metadata.Candidate{Title: "Other"}}

	result, err := newService(c, fetcher).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, fetcher.calls)
	assert.False(t, result.RecordFileWritten)
	assert.Equal(t, records, c.read(t, c.recordFile), "record file is only rewritten after a change")
	assert.True(t, result.PageWritten)
	assert.Contains(t, c.read(t, c.pageFile), `<h3 class="book-title">Dune</h3>`)
}

func TestRun_FetchFailureStillRendersPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	records := "## Book 1\n- Title: \n- Author: Jane Doe\n- Goodreads: " + server.URL + "/book/404\n- Image: \n"
	c := newCatalog(t, records, testPage)
	scraper := metadata.NewScraper(2*time.Second, "", nil)

	result, err := newService(c, scraper).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Attempted)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.False(t, result.RecordFileWritten)
	assert.Equal(t, records, c.read(t, c.recordFile))

	page := c.read(t, c.pageFile)
	assert.Contains(t, page, `<img src="`+exporters.DefaultPlaceholderImage+`"`)
	assert.Contains(t, page, `<h3 class="book-title">Untitled</h3>`)
	assert.Contains(t, page, `<p class="book-author">Jane Doe</p>`)
}

func TestRun_UnreachableSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachable := server.URL
	server.Close()

	records := "## Book 1\n- Goodreads: " + unreachable + "\n"
	c := newCatalog(t, records, testPage)

	result, err := newService(c, metadata.NewScraper(time.Second, "", nil)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.True(t, result.PageWritten)
	assert.Contains(t, c.read(t, c.pageFile), `<a href="`+unreachable+`"`)
}

func TestRun_RegionMissingLeavesPage(t *testing.T) {
	page := "<html><body><p>no grid here</p></body></html>"
	c := newCatalog(t, "## Book 1\n- Title: Solaris\n", page)

	result, err := newService(c, &stubFetcher{}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.PageWritten)
	assert.Equal(t, page, c.read(t, c.pageFile))
}

func TestRun_MissingRecordFile(t *testing.T) {
	c := newCatalog(t, "", testPage)
	require.NoError(t, os.Remove(c.recordFile))

	_, err := newService(c, &stubFetcher{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_MissingPageFile(t *testing.T) {
	c := newCatalog(t, "## Book 1\n- Title: Solaris\n", testPage)
	require.NoError(t, os.Remove(c.pageFile))

	_, err := newService(c, &stubFetcher{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_LockHeldByAnotherBuild(t *testing.T) {
	c := newCatalog(t, "## Book 1\n- Title: Solaris\n", testPage)

	other := flock.New(c.recordFile + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	page := exporters.NewPageExporter(c.pageFile, exporters.NewRegion("", nil), "")
	service := NewBuildService(c.recordFile, metadata.NewEnricher(&stubFetcher{}), page, 200*time.Millisecond)

	_, err = service.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, testPage, c.read(t, c.pageFile))
}

func countCards(page string) int {
	return strings.Count(page, `<article class="book-card">`)
}
