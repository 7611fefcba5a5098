package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Catalog
		Fetch
		Page
		Watch
		Log
	}

	Catalog struct {
		Dir         string
		RecordFile  string // Absolute path to books.md
		PageFile    string // Absolute path to books.html
		LockTimeout time.Duration
	}
	Fetch struct {
		Timeout   time.Duration
		UserAgent string
		Extractor string // "patterns" or "document"
	}
	Page struct {
		RegionOpen       string
		RegionClose      []string // Tag sequence, whitespace allowed between tags
		PlaceholderImage string
	}
	Watch struct {
		Mode            string // "poll" or "notify"
		PollInterval    time.Duration
		RebuildSchedule string // Cron format, empty disables periodic rebuilds
	}
	Log struct {
		File       string
		MaxSizeMB  int
		MaxBackups int
	}
)

// toolDir returns the directory of the running executable, or the working
// directory when it cannot be determined.
func toolDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// resolvePath makes name absolute relative to dir.
func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func NewConfig() *Config {
	dir := toolDir()

	// Values already in the environment win over .env files
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("books_dir", dir)
	v.SetDefault("books_record_file", DefaultRecordFileName)
	v.SetDefault("books_page_file", DefaultPageFileName)
	v.SetDefault("books_lock_timeout", "30s")

	// Enrichment defaults
	v.SetDefault("books_fetch_timeout", "15s")
	v.SetDefault("books_user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("books_extractor", "patterns")

	// Page defaults
	v.SetDefault("books_region_open", `<div class="books-grid">`)
	v.SetDefault("books_region_close", "</div> </section>")
	v.SetDefault("books_placeholder_image", "https://via.placeholder.com/300x450?text=Book+Cover")

	// Watch defaults
	v.SetDefault("books_watch_mode", WatchModePoll)
	v.SetDefault("books_poll_interval", "500ms")
	v.SetDefault("books_rebuild_schedule", "")

	// Log defaults
	v.SetDefault("books_log_file", "")
	v.SetDefault("books_log_max_size_mb", 5)
	v.SetDefault("books_log_max_backups", 3)

	catalogDir := v.GetString("BOOKS_DIR")

	return &Config{
		Catalog: Catalog{
			Dir:         catalogDir,
			RecordFile:  resolvePath(catalogDir, v.GetString("BOOKS_RECORD_FILE")),
			PageFile:    resolvePath(catalogDir, v.GetString("BOOKS_PAGE_FILE")),
			LockTimeout: v.GetDuration("BOOKS_LOCK_TIMEOUT"),
		},
		Fetch: Fetch{
			Timeout:   v.GetDuration("BOOKS_FETCH_TIMEOUT"),
			UserAgent: v.GetString("BOOKS_USER_AGENT"),
			Extractor: v.GetString("BOOKS_EXTRACTOR"),
		},
		Page: Page{
			RegionOpen:       v.GetString("BOOKS_REGION_OPEN"),
			RegionClose:      v.GetStringSlice("BOOKS_REGION_CLOSE"),
			PlaceholderImage: v.GetString("BOOKS_PLACEHOLDER_IMAGE"),
		},
		Watch: Watch{
			Mode:            v.GetString("BOOKS_WATCH_MODE"),
			PollInterval:    v.GetDuration("BOOKS_POLL_INTERVAL"),
			RebuildSchedule: v.GetString("BOOKS_REBUILD_SCHEDULE"),
		},
		Log: Log{
			File:       v.GetString("BOOKS_LOG_FILE"),
			MaxSizeMB:  v.GetInt("BOOKS_LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("BOOKS_LOG_MAX_BACKUPS"),
		},
	}
}
