package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// No arguments runs a single build, which is also how the watcher invokes us
	name := "build"
	var args []string
	if len(os.Args) >= 2 {
		name = os.Args[1]
		args = os.Args[2:]
	}

	var cmd command
	switch name {
	case "build":
		cmd = cli.NewBuildCommand()
	case "watch":
		cmd = cli.NewWatchCommand()
	case "list":
		cmd = cli.NewListCommand()
	case "version":
		fmt.Printf("bookshelf %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  build     Fetch missing book details and regenerate the page (default)\n")
	fmt.Fprintf(os.Stderr, "  watch     Rebuild whenever the record file changes\n")
	fmt.Fprintf(os.Stderr, "  list      Print the record file as a table\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
