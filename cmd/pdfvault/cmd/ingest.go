package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/events"
	"github.com/mfenderov/pdfvault/internal/ingestion"
)

var ingestPrefix string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest PDF files",
	Long: `Ingest local PDF files, or re-ingest uploads kept in the archive.

Examples:
  # Ingest local files
  pdfvault ingest contracts/*.pdf

  # Re-ingest everything archived under a prefix
  pdfvault ingest --prefix uploads/`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "archive prefix to re-ingest (requires storage.enabled)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if (ingestPrefix == "") == (len(args) == 0) {
		return fmt.Errorf("pass either files or --prefix")
	}

	ctx, stop := signalContext()
	defer stop()

	cfg := GetConfig()
	slog.Debug("ingest command starting", "files", len(args), "prefix", ingestPrefix)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []ingestion.Option{
		ingestion.WithWorkers(cfg.Ingest.Workers),
		ingestion.WithListener(func(ev events.Event) {
			if doc, ok := ev.(events.DocumentIngested); ok {
				fmt.Printf("  %s -> %s\n", doc.Source, doc.ID)
			}
		}),
	}
	if archive != nil {
		opts = append(opts, ingestion.WithSource(archive))
	}
	engine := ingestion.New(newPipeline(cfg, st, archive), opts...)

	var result *ingestion.Result
	if ingestPrefix != "" {
		fmt.Printf("Ingesting: %s\n", ingestPrefix)
		result, err = engine.IngestPrefix(ctx, ingestPrefix)
	} else {
		fmt.Printf("Ingesting %d files\n", len(args))
		result, err = engine.IngestFiles(ctx, args)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Docs ingested: %d\n", result.DocsIngested)
	fmt.Printf("  Rejected: %d\n", result.Rejected)
	fmt.Printf("  Duration: %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:\n")
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	return nil
}
