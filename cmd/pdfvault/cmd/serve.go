package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/httpapi"
	"github.com/mfenderov/pdfvault/internal/query"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for uploads and document queries.

Routes:
  GET    /health
  GET    /stats
  POST   /upload               (multipart field "file")
  GET    /documents            (pii_found, from_date, to_date, author, limit, offset)
  GET    /documents/search     (q, limit, offset)
  GET    /documents/{id}
  DELETE /documents/{id}

Example:
  pdfvault serve --addr :8000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides http.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := GetConfig()
	addr := cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
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

	handler := httpapi.NewServer(
		httpapi.Config{MaxUploadBytes: cfg.HTTP.MaxUploadBytes},
		newPipeline(cfg, st, archive),
		query.New(st),
		st,
	)

	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: cfg.HTTP.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
