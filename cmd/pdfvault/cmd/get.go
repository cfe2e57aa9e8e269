package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/query"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print a document with its extracted text as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return withQueries(ctx, func(q *query.Service) error {
			doc, err := q.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(doc)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return withQueries(ctx, func(q *query.Service) error {
			if err := q.Delete(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus-wide totals as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return withQueries(ctx, func(q *query.Service) error {
			st, err := q.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(st)
		})
	},
}

func init() {
	rootCmd.AddCommand(getCmd, deleteCmd, statsCmd)
}
