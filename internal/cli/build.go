package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

type BuildCommand struct {
	RecordFile string
	PageFile   string
	Extractor  string
}

func NewBuildCommand() *BuildCommand {
	return &BuildCommand{}
}

func (cmd *BuildCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)

	fs.StringVar(&cmd.RecordFile, "records", "", "Path to the book record file (overrides BOOKS_RECORD_FILE)")
	fs.StringVar(&cmd.PageFile, "page", "", "Path to the catalog page (overrides BOOKS_PAGE_FILE)")
	fs.StringVar(&cmd.Extractor, "extractor", "", "Metadata extractor: patterns or document (overrides BOOKS_EXTRACTOR)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s build [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fill in missing book details from their source pages and regenerate the catalog page.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s build\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s build -records ./books.md -page ./books.html\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Extractor != "" && cmd.Extractor != metadata.ExtractorPatterns && cmd.Extractor != metadata.ExtractorDocument {
		fs.Usage()
		return fmt.Errorf("unknown extractor %q", cmd.Extractor)
	}

	return nil
}

// apply overrides configuration with values given on the command line.
func (cmd *BuildCommand) apply(cfg *config.Config) {
	if cmd.RecordFile != "" {
		cfg.Catalog.RecordFile = absPath(cmd.RecordFile)
	}
	if cmd.PageFile != "" {
		cfg.Catalog.PageFile = absPath(cmd.PageFile)
	}
	if cmd.Extractor != "" {
		cfg.Fetch.Extractor = cmd.Extractor
	}
}

func (cmd *BuildCommand) Run() error {
	cfg := config.NewConfig()
	cmd.apply(cfg)

	cleanup := entrypoint.SetupLogging(cfg)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := entrypoint.NewBuildService(cfg)
	if _, err := service.Run(ctx); err != nil {
		return err
	}
	return nil
}
