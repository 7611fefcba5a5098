package parsers

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Each record block starts with a second-level heading ("## Book 1").
var recordHeading = regexp.MustCompile(`(?m)^## `)

const (
	titlePrefix     = "- Title:"
	authorPrefix    = "- Author:"
	goodreadsPrefix = "- Goodreads:"
	imagePrefix     = "- Image:"
	categoryPrefix  = "- Category:"
)

// ParseRecords splits the record file content into books, in file order.
// Malformed blocks are not rejected: unknown lines are ignored and missing
// fields stay empty. Text before the first heading is the file header.
func ParseRecords(content string) []entities.Book {
	books := make([]entities.Book, 0)

	sections := recordHeading.Split(content, -1)
	for _, section := range sections[1:] {
		books = append(books, parseRecordBlock(section))
	}

	return books
}

// ParseRecordFile reads and parses the record file at path.
func ParseRecordFile(path string) ([]entities.Book, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file %s: %w", path, err)
	}
	return ParseRecords(string(content)), nil
}

func parseRecordBlock(section string) entities.Book {
	var book entities.Book

	for _, line := range strings.Split(section, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, titlePrefix):
			book.Title = fieldValue(line, titlePrefix)
		case strings.HasPrefix(line, authorPrefix):
			book.Author = fieldValue(line, authorPrefix)
		case strings.HasPrefix(line, goodreadsPrefix):
			book.SourceURL = fieldValue(line, goodreadsPrefix)
		case strings.HasPrefix(line, imagePrefix):
			book.ImageURL = fieldValue(line, imagePrefix)
		case strings.HasPrefix(line, categoryPrefix):
			book.Category = strings.ToUpper(fieldValue(line, categoryPrefix))
		}
	}

	return book
}

func fieldValue(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}
