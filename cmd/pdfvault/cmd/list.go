package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/query"
)

var (
	listFilters filterFlags
	listLimit   int
	listOffset  int
	listFormat  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Long: `List ingested documents, newest first.

Examples:
  pdfvault list --pii true
  pdfvault list --author smith --from 2024-01-01 --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listFilters.register(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", query.DefaultLimit, "Maximum number of results")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of results to skip")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text or json")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	f, err := listFilters.filter()
	if err != nil {
		return err
	}

	return withQueries(ctx, func(q *query.Service) error {
		res, err := q.List(ctx, f, query.Page{Offset: listOffset, Limit: listLimit})
		if err != nil {
			return err
		}
		return printPage(res, listFormat)
	})
}
