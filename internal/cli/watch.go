package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

type WatchCommand struct {
	Mode     string
	Interval time.Duration
	Schedule string
}

func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	fs.StringVar(&cmd.Mode, "mode", "", "Change detection: poll or notify (overrides BOOKS_WATCH_MODE)")
	fs.DurationVar(&cmd.Interval, "interval", 0, "Polling interval in poll mode (overrides BOOKS_POLL_INTERVAL)")
	fs.StringVar(&cmd.Schedule, "schedule", "", "Cron schedule for periodic rebuilds (overrides BOOKS_REBUILD_SCHEDULE)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rebuild the catalog page whenever the record file changes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s watch\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s watch -mode notify\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s watch -schedule \"0 3 * * *\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Mode != "" && cmd.Mode != config.WatchModePoll && cmd.Mode != config.WatchModeNotify {
		fs.Usage()
		return fmt.Errorf("unknown watch mode %q", cmd.Mode)
	}
	if cmd.Interval < 0 {
		return fmt.Errorf("interval must be positive")
	}
	if cmd.Schedule != "" {
		if err := scheduler.ValidateCronSchedule(cmd.Schedule); err != nil {
			return err
		}
	}

	return nil
}

func (cmd *WatchCommand) apply(cfg *config.Config) {
	if cmd.Mode != "" {
		cfg.Watch.Mode = cmd.Mode
	}
	if cmd.Interval > 0 {
		cfg.Watch.PollInterval = cmd.Interval
	}
	if cmd.Schedule != "" {
		cfg.Watch.RebuildSchedule = cmd.Schedule
	}
}

func (cmd *WatchCommand) Run() error {
	cfg := config.NewConfig()
	cmd.apply(cfg)

	cleanup := entrypoint.SetupLogging(cfg)
	defer cleanup()

	w, err := entrypoint.NewWatcher(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("👀 Watching %s for changes...\n", cfg.Catalog.RecordFile)
	if cfg.Watch.RebuildSchedule != "" {
		fmt.Printf("⏰ Periodic rebuild: %s\n", scheduler.GetCronDescription(cfg.Watch.RebuildSchedule))
	}
	fmt.Printf("Press Ctrl+C to stop\n\n")

	if err := w.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("\nStopped watching\n")
	return nil
}
