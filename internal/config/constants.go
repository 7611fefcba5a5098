package config

// Default file names, resolved against the catalog directory
const (
	// DefaultRecordFileName is the markdown-like list of books
	DefaultRecordFileName = "books.md"

	// DefaultPageFileName is the static page whose books grid gets regenerated
	DefaultPageFileName = "books.html"
)

const (
	WatchModePoll   = "poll"
	WatchModeNotify = "notify"
)
