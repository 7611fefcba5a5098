package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/parsers"
)

const maxCellWidth = 40

type ListCommand struct {
	RecordFile  string
	MissingOnly bool

	out io.Writer
}

func NewListCommand() *ListCommand {
	return &ListCommand{out: os.Stdout}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)

	fs.StringVar(&cmd.RecordFile, "records", "", "Path to the book record file (overrides BOOKS_RECORD_FILE)")
	fs.BoolVar(&cmd.MissingOnly, "missing", false, "Only show books that still need details fetched")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the books in the record file as a table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ListCommand) Run() error {
	path := cmd.RecordFile
	if path == "" {
		path = config.NewConfig().Catalog.RecordFile
	} else {
		path = absPath(path)
	}

	books, err := parsers.ParseRecordFile(path)
	if err != nil {
		return err
	}

	if len(books) == 0 {
		fmt.Fprintf(cmd.out, "No books found in %s\n", path)
		return nil
	}

	fmt.Fprintln(cmd.out, renderBookTable(books, cmd.MissingOnly))
	return nil
}

func renderBookTable(books []entities.Book, missingOnly bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"#", "Title", "Author", "Category", "Missing"})

	shown := 0
	for i := range books {
		book := &books[i]
		if missingOnly && !book.NeedsEnrichment() {
			continue
		}
		shown++
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			truncate(book.Title),
			truncate(book.Author),
			string(entities.NormalizeCategory(book.Category)),
			strings.Join(book.MissingFields(), ", "),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d books", shown, len(books))})

	return tw.Render()
}

func truncate(value string) string {
	runes := []rune(value)
	if len(runes) <= maxCellWidth {
		return value
	}
	return string(runes[:maxCellWidth-1]) + "…"
}
