package entrypoint

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/exporters"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/watcher"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging sends log output to stderr and, when a log file is configured,
// to a size-rotated file as well. The returned cleanup closes the file.
func SetupLogging(cfg *config.Config) func() {
	if cfg.Log.File == "" {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     30,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return func() {
		log.SetOutput(os.Stderr)
		if err := rotator.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
		}
	}
}

// NewBuildService wires the catalog pipeline from configuration.
func NewBuildService(cfg *config.Config) *services.BuildService {
	extractor := metadata.NewExtractor(cfg.Fetch.Extractor)
	scraper := metadata.NewScraper(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, extractor)
	enricher := metadata.NewEnricher(scraper)

	region := exporters.NewRegion(cfg.Page.RegionOpen, cfg.Page.RegionClose)
	page := exporters.NewPageExporter(cfg.Catalog.PageFile, region, cfg.Page.PlaceholderImage)

	return services.NewBuildService(cfg.Catalog.RecordFile, enricher, page, cfg.Catalog.LockTimeout)
}

// NewWatcher wires the watch loop: each build re-runs this binary with the
// build command, triggered by record file changes and the optional schedule.
func NewWatcher(cfg *config.Config) (*watcher.Watcher, error) {
	builder, err := watcher.NewSelfBuilder("build")
	if err != nil {
		return nil, err
	}

	var triggers []watcher.Trigger
	switch cfg.Watch.Mode {
	case config.WatchModeNotify:
		triggers = append(triggers, watcher.NewNotifyTrigger(cfg.Catalog.RecordFile))
	case config.WatchModePoll, "":
		triggers = append(triggers, watcher.NewPollTrigger(cfg.Catalog.RecordFile, cfg.Watch.PollInterval))
	default:
		return nil, fmt.Errorf("unsupported watch mode %q (expected %q or %q)",
			cfg.Watch.Mode, config.WatchModePoll, config.WatchModeNotify)
	}

	if cfg.Watch.RebuildSchedule != "" {
		rebuild, err := scheduler.NewRebuildTrigger(cfg.Watch.RebuildSchedule)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, rebuild)
	}

	return watcher.New(builder, triggers...), nil
}
