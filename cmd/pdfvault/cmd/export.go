package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/export"
	"github.com/mfenderov/pdfvault/internal/query"
)

var (
	exportFilters filterFlags
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document listing to an XLSX workbook",
	Long: `Export one row per document (same filters as list) to an XLSX workbook.

Example:
  pdfvault export --pii true --out pii-report.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "documents.xlsx", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	f, err := exportFilters.filter()
	if err != nil {
		return err
	}

	return withQueries(ctx, func(q *query.Service) error {
		data, err := export.NewService(q, slog.Default()).ExportXLSX(ctx, f)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", exportOut, len(data))
		return nil
	})
}
