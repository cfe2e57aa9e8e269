package entities

import (
	"regexp"

	"github.com/mfenderov/pdfvault/pkg/models"
)

// Compiled once; *regexp.Regexp is safe for concurrent use.
var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	urlPattern   = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")
	datePattern  = regexp.MustCompile(`(?i)\b(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})\b`)
)

// Result holds the deduplicated entity sets found in one text.
type Result struct {
	Emails       []string
	PhoneNumbers []string
	URLs         []string
	Dates        []string
	PIIFound     bool
}

// Scan runs every matcher over text. Values keep their first-occurrence order.
func Scan(text string) Result {
	emails := Emails(text)
	phones := PhoneNumbers(text)
	return Result{
		Emails:       emails,
		PhoneNumbers: phones,
		URLs:         URLs(text),
		Dates:        Dates(text),
		PIIFound:     models.HasPII(emails, phones),
	}
}

// Emails returns the distinct email addresses in text.
func Emails(text string) []string { return findUnique(emailPattern, text) }

// PhoneNumbers returns the distinct US-style phone numbers in text, in their captured form.
func PhoneNumbers(text string) []string { return findUnique(phonePattern, text) }

// URLs returns the distinct http(s) URLs in text.
func URLs(text string) []string { return findUnique(urlPattern, text) }

// Dates returns the distinct numeric and month-name dates in text.
func Dates(text string) []string { return findUnique(datePattern, text) }

func findUnique(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
