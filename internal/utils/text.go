package utils

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Anything that looks like a markup tag
	markupTags = regexp.MustCompile(`<[^>]+>`)
	// Runs of whitespace, including newlines from multi-line captures
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// CleanScrapedText turns a fragment captured from remote markup into plain
// text: tags are removed, entities decoded and whitespace collapsed.
func CleanScrapedText(fragment string) string {
	text := markupTags.ReplaceAllString(fragment, "")
	text = html.UnescapeString(text)
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// EscapeHTML escapes the five HTML-special characters. Single quotes become
// &#039; to keep the page output stable across rebuilds.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)
