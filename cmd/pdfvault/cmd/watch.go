package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/ingestion"
	"github.com/mfenderov/pdfvault/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Ingest PDFs as they appear in directories",
	Long: `Watch directories recursively and ingest every PDF that is created or modified.
Directories default to watch.dirs from the configuration.

Example:
  pdfvault watch ./inbox`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := GetConfig()
	dirs := args
	if len(dirs) == 0 {
		dirs = cfg.Watch.Dirs
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no directories to watch (pass them or set watch.dirs)")
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	engine := ingestion.New(newPipeline(cfg, st, archive))

	paths, errs, err := watch.Start(ctx, watch.Config{
		Roots:       dirs,
		InitialScan: cfg.Watch.InitialScan,
		Debounce:    cfg.Watch.Debounce,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %v\n", dirs)

	for {
		select {
		case p, ok := <-paths:
			if !ok {
				return nil
			}
			doc, err := engine.IngestFile(ctx, p)
			if err != nil {
				slog.Warn("file rejected", "path", p, "error", err)
				continue
			}
			fmt.Printf("%s -> %s\n", p, doc.ID)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
