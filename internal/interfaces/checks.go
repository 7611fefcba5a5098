package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/watcher"
)

// =============================================================================
// Metadata
// =============================================================================

// Extractor implementations
var _ metadata.Extractor = (*metadata.PatternExtractor)(nil)
var _ metadata.Extractor = (*metadata.DocumentExtractor)(nil)

// Fetcher implementations
var _ metadata.Fetcher = (*metadata.Scraper)(nil)

// =============================================================================
// Build Pipeline
// =============================================================================

var _ services.BookEnricher = (*metadata.Enricher)(nil)
var _ services.PageExporter = (*exporters.PageExporter)(nil)

// =============================================================================
// Watch Loop
// =============================================================================

// Builder implementations
var _ watcher.Builder = (*watcher.ProcessBuilder)(nil)

// Trigger implementations
var _ watcher.Trigger = (*watcher.PollTrigger)(nil)
var _ watcher.Trigger = (*watcher.NotifyTrigger)(nil)
var _ watcher.Trigger = (*scheduler.RebuildTrigger)(nil)
