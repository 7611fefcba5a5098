// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Metadata Interfaces
//
//   - Extractor: Pulls title, author and cover out of a book page (internal/metadata/extractor.go)
//   - Fetcher: Retrieves a candidate for one source URL (internal/metadata/enricher.go)
//
// ## Build Pipeline Interfaces
//
//   - BookEnricher: Fills in missing record fields (internal/services/interfaces.go)
//   - PageExporter: Writes the rendered cards into the page (internal/services/interfaces.go)
//
// ## Watch Loop Interfaces
//
//   - Builder / Build: Starts and cancels one build run (internal/watcher/watcher.go)
//   - Trigger: Emits rebuild requests (internal/watcher/watcher.go)
//
// # Adding a New Extractor
//
// To support a source site whose markup the existing extractors miss:
//
//  1. Implement Extractor in internal/metadata/
//
//     type OpenGraphExtractor struct{}
//
//     func (e *OpenGraphExtractor) Extract(html string) Candidate {
//         // Only fill what the page provides, leave the rest empty
//     }
//
//     var _ Extractor = (*OpenGraphExtractor)(nil)
//
//  2. Register its name in NewExtractor and document the BOOKS_EXTRACTOR value
//
// # Adding a New Trigger
//
// Anything that should cause a rebuild implements Trigger. Run blocks until
// the context is cancelled and calls notify for every event; the watcher
// coalesces events that arrive while a restart is pending.
//
//	type SignalTrigger struct{ ch <-chan os.Signal }
//
//	func (t *SignalTrigger) Run(ctx context.Context, notify func(reason string)) error
//
// Wire it in entrypoint.NewWatcher.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
