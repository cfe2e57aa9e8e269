package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// filterFlags are the listing predicates shared by list and export.
type filterFlags struct {
	pii    string
	from   string
	to     string
	author string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pii, "pii", "", "only documents with (true) or without (false) PII")
	cmd.Flags().StringVar(&f.from, "from", "", "ingested at or after (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "ingested at or before (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.author, "author", "", "author contains (case-insensitive)")
}

func (f *filterFlags) filter() (store.Filter, error) {
	out := store.Filter{Author: f.author}
	if f.pii != "" {
		b, err := strconv.ParseBool(f.pii)
		if err != nil {
			return out, fmt.Errorf("--pii must be true or false")
		}
		out.PIIFound = &b
	}

	var err error
	if out.CreatedFrom, err = parseDateFlag("from", f.from); err != nil {
		return out, err
	}
	if out.CreatedTo, err = parseDateFlag("to", f.to); err != nil {
		return out, err
	}
	return out, nil
}

func parseDateFlag(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("--%s must be RFC 3339 or YYYY-MM-DD", name)
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func printPage(res models.ResultPage, format string) error {
	if format == "json" {
		return printJSON(res)
	}
	if len(res.Items) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Showing %d of %d documents:\n\n", len(res.Items), res.Total)
	for _, it := range res.Items {
		fmt.Printf("%s  %s\n", it.ID, it.Filename)
		if it.Title != nil {
			fmt.Printf("  Title:   %s\n", *it.Title)
		}
		if it.Author != nil {
			fmt.Printf("  Author:  %s\n", *it.Author)
		}
		fmt.Printf("  Pages: %d  Words: %d  Size: %d  PII: %t (%d emails, %d phones)\n",
			it.PageCount, it.WordCount, it.FileSize, it.PIIFound, it.EmailsCount, it.PhonesCount)
		fmt.Printf("  Ingested: %s\n\n", it.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
