// Package pdftest builds small, well-formed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Info holds the optional document information entries.
type Info struct {
	Title        string
	Author       string
	CreationDate string
}

func (i Info) empty() bool {
	return i.Title == "" && i.Author == "" && i.CreationDate == ""
}

// Build returns a PDF with one page per element of pages, each page showing
// its text with a single Tj operator in Helvetica.
func Build(info Info, pages ...string) []byte {
	// Object layout: 1 catalog, 2 pages, 3 font, then (page, content) pairs, then info.
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		contentObj := 5 + 2*i
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentObj))
		stream := "BT /F1 12 Tf 72 720 Td (" + escape(text) + ") Tj ET"
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	infoRef := ""
	if !info.empty() {
		var entries []string
		if info.Title != "" {
			entries = append(entries, "/Title ("+escape(info.Title)+")")
		}
		if info.Author != "" {
			entries = append(entries, "/Author ("+escape(info.Author)+")")
		}
		if info.CreationDate != "" {
			entries = append(entries, "/CreationDate ("+escape(info.CreationDate)+")")
		}
		objects = append(objects, "<< "+strings.Join(entries, " ")+" >>")
		infoRef = fmt.Sprintf(" /Info %d 0 R", len(objects))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, infoRef, xref)
	return buf.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
