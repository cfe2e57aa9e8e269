package pdfx

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/mfenderov/pdfvault/internal/apperr"
)

// Result is everything the pipeline needs from one PDF.
type Result struct {
	Text         string
	PageCount    int
	Title        *string
	Author       *string
	PDFCreatedAt *time.Time
}

// Extract decodes content and returns its page texts, concatenated in page order,
// together with the document information dictionary.
//
// A page that yields no text contributes an empty string. Only an unreadable
// stream fails, with an error matching apperr.ErrDecode.
func Extract(content []byte) (res *Result, err error) {
	if len(content) == 0 {
		return nil, apperr.Decode(fmt.Errorf("empty content"))
	}

	// ledongthuc/pdf reports some malformed structures by panicking.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = apperr.Decode(fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, apperr.Decode(err)
	}

	numPages := r.NumPage()
	var text strings.Builder
	for i := 1; i <= numPages; i++ {
		text.WriteString(pageText(r, i))
	}

	res = &Result{
		Text:      text.String(),
		PageCount: numPages,
	}

	info := r.Trailer().Key("Info")
	if !info.IsNull() {
		res.Title = infoString(info, "Title")
		res.Author = infoString(info, "Author")
		if raw := infoString(info, "CreationDate"); raw != nil {
			if ts, ok := ParseDate(*raw); ok {
				res.PDFCreatedAt = &ts
			} else {
				slog.Debug("ignoring unparseable pdf creation date", "value", *raw)
			}
		}
	}

	return res, nil
}

func pageText(r *pdf.Reader, n int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Debug("page text extraction panicked", "page", n, "error", rec)
			text = ""
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		slog.Debug("page text extraction failed", "page", n, "error", err)
		return ""
	}
	return text
}

func infoString(info pdf.Value, key string) *string {
	v := info.Key(key)
	if v.IsNull() {
		return nil
	}
	s := v.Text()
	return &s
}
