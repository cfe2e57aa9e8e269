package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/query"
)

var (
	searchLimit  int
	searchOffset int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Search extracted text, filenames, titles and authors (case-insensitive substring).

Examples:
  # Basic search
  pdfvault search "invoice"

  # Limit results
  pdfvault search "acme" --limit 5

  # JSON output for scripting
  pdfvault search "contract" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Number of results to skip")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	return withQueries(ctx, func(q *query.Service) error {
		res, err := q.Search(ctx, args[0], query.Page{Offset: searchOffset, Limit: searchLimit})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printPage(res, searchFormat)
	})
}
