package textstats

import (
	"strings"
	"unicode/utf8"
)

// Stats are the content statistics stored with each document.
type Stats struct {
	WordCount int
	// CharCount is measured in Unicode code points, not bytes.
	CharCount int
}

// Compute counts whitespace-delimited words and code points in text.
func Compute(text string) Stats {
	return Stats{
		WordCount: len(strings.Fields(text)),
		CharCount: utf8.RuneCountInString(text),
	}
}
