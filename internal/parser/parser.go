// Package parser converts raw source files into canonical records. Each
// source format gets its own Source implementation; the Registry scores
// every Source against a file and runs the best one. Parsing is
// line-oriented and never aborts a whole file on one bad line — a bad
// line is a counted failure, not an error.
package parser

import (
	"strings"

	"github.com/openfinbr/conciliador/internal/domain"
)

// Source is one file-format parser. Detect returns a 0-100 confidence
// that the content matches this source's format; Parse converts the
// content into canonical records with per-record provenance.
type Source interface {
	Name() string
	Version() string
	Detect(content, filename string) int
	Parse(content, sourceFile string) *ParseResult
}

// ParseResult is the outcome of parsing one file. Confidence is the
// successful-line ratio; FailedLines counts lines that produced no
// record at all.
type ParseResult struct {
	Parser       string                        `json:"parser"`
	SourceFile   string                        `json:"source_file"`
	Persons      []*domain.CanonicalPerson     `json:"persons,omitempty"`
	Transactions []*domain.CanonicalTransaction `json:"transactions,omitempty"`
	BankEntries  []*domain.CanonicalBankEntry  `json:"bank_entries,omitempty"`
	FailedLines  int                           `json:"failed_lines"`
	Confidence   float64                       `json:"confidence"`
	Warnings     []string                      `json:"warnings,omitempty"`
}

// RecordCount is the number of canonical records the file produced.
func (r *ParseResult) RecordCount() int {
	return len(r.Persons) + len(r.Transactions) + len(r.BankEntries)
}

// finish computes the successful-line confidence ratio.
func (r *ParseResult) finish(succeeded int) {
	total := succeeded + r.FailedLines
	if total == 0 {
		r.Confidence = 0
		return
	}
	r.Confidence = float64(succeeded) / float64(total)
}

// splitLines splits file content into lines, tolerating CRLF.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

// sniffDelimiter picks the CSV delimiter by counting candidates on the
// first non-empty line; Brazilian exports favor ';'.
func sniffDelimiter(content string) rune {
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") >= strings.Count(line, ",") && strings.Contains(line, ";") {
			return ';'
		}
		return ','
	}
	return ','
}

// headerScore counts how many of the wanted tokens appear in a header
// line, scaled to 0-100.
func headerScore(header string, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	upper := strings.ToUpper(header)
	hits := 0
	for _, t := range tokens {
		if strings.Contains(upper, strings.ToUpper(t)) {
			hits++
		}
	}
	return hits * 100 / len(tokens)
}
