package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const recordFileHeader = "# Books\n\n"

// SerializeRecords renders books in the canonical record file format.
// Title, Author, Goodreads and Image lines are always written; Category only
// when set, so an empty category parses back as empty rather than FICTION.
func SerializeRecords(books []entities.Book) string {
	var builder strings.Builder

	builder.WriteString(recordFileHeader)
	for i, book := range books {
		fmt.Fprintf(&builder, "## Book %d\n", i+1)
		fmt.Fprintf(&builder, "- Title: %s\n", book.Title)
		fmt.Fprintf(&builder, "- Author: %s\n", book.Author)
		fmt.Fprintf(&builder, "- Goodreads: %s\n", book.SourceURL)
		fmt.Fprintf(&builder, "- Image: %s\n", book.ImageURL)
		if book.Category != "" {
			fmt.Fprintf(&builder, "- Category: %s\n", book.Category)
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// WriteRecordFile serializes books and replaces the record file at path.
func WriteRecordFile(path string, books []entities.Book) error {
	return writeFileAtomic(path, []byte(SerializeRecords(books)))
}

// writeFileAtomic writes to a temp file in the target directory and renames it
// over path, so a killed build never leaves a half-written file behind.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp_")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
