// Package infer guesses the semantic type of raw field values so parsers
// can repair rows whose columns arrived shifted or ragged, and skip the
// header/footer noise that bank exports sprinkle between data lines.
package infer

import (
	"regexp"
	"strings"

	"github.com/openfinbr/conciliador/internal/normalize"
)

// FieldKind is the inferred semantic type of a single field value.
type FieldKind int

const (
	KindEmpty FieldKind = iota
	KindDate
	KindMoney
	KindDocument
	KindInteger
	KindText
)

func (k FieldKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindDate:
		return "date"
	case KindMoney:
		return "money"
	case KindDocument:
		return "document"
	case KindInteger:
		return "integer"
	default:
		return "text"
	}
}

var (
	datePattern  = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}$|^\d{1,2}[-/ ][A-Za-z]{3}$`)
	moneyPattern = regexp.MustCompile(`^\(?[-+]?\s*(R\$)?\s*[\d.,]+\s*[DCdc]?\)?$`)
	docPattern   = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$|^\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}$`)
	intPattern   = regexp.MustCompile(`^\d+$`)
)

// InferField guesses the semantic type of one field value using cheap
// pattern checks. Money requires an actual separator or sign so bare
// integers stay KindInteger (they are usually document numbers or refs).
func InferField(v string) FieldKind {
	s := strings.TrimSpace(v)
	if s == "" {
		return KindEmpty
	}
	if docPattern.MatchString(s) {
		return KindDocument
	}
	if datePattern.MatchString(s) {
		if _, ok := normalize.ParseDate(s, normalize.DateConfig{DefaultYear: 2000}); ok {
			return KindDate
		}
	}
	if intPattern.MatchString(s) {
		return KindInteger
	}
	if moneyPattern.MatchString(s) && strings.ContainsAny(s, ",.DCdc-(") {
		if normalize.ParseAmount(s).Valid {
			return KindMoney
		}
	}
	return KindText
}

// InferRow infers every field of a row.
func InferRow(fields []string) []FieldKind {
	kinds := make([]FieldKind, len(fields))
	for i, f := range fields {
		kinds[i] = InferField(f)
	}
	return kinds
}

// Matches reports whether an inferred kind satisfies an expected kind.
// Integer is acceptable where money or a document is expected (amounts
// without separators, unformatted document numbers); empty satisfies
// text because free-text columns are frequently blank.
func Matches(got, want FieldKind) bool {
	if got == want {
		return true
	}
	switch want {
	case KindMoney, KindDocument:
		return got == KindInteger
	case KindText:
		return got == KindEmpty || got == KindInteger
	}
	return false
}

// RealignRow tries to repair a row whose inferred kinds disagree with
// the declared schema by sliding the fields left or right by one
// position (the usual failure mode: an extra or missing leading field).
// Returns the realigned row and true when a shift makes every expected
// kind line up; otherwise the original row and false.
func RealignRow(fields []string, want []FieldKind) ([]string, bool) {
	if rowFits(fields, want) {
		return fields, true
	}

	// Extra field crept in: try dropping one leading field.
	if len(fields) > len(want) {
		for skip := 1; skip <= len(fields)-len(want); skip++ {
			shifted := fields[skip:]
			if rowFits(shifted, want) {
				return shifted, true
			}
		}
	}

	// Ragged tail: try padding with empties.
	if len(fields) < len(want) {
		padded := make([]string, len(want))
		copy(padded, fields)
		if rowFits(padded, want) {
			return padded, true
		}
	}

	return fields, false
}

func rowFits(fields []string, want []FieldKind) bool {
	if len(fields) < len(want) {
		return false
	}
	for i, w := range want {
		if !Matches(InferField(fields[i]), w) {
			return false
		}
	}
	return true
}

var summaryWords = []string{
	"TOTAL", "SALDO", "SUBTOTAL", "RESUMO", "SOMA",
}

// SkipLine reports whether a line is structural noise: blank, a ruler of
// separator characters, or a footer/summary row. Parsers call this
// before attempting structural parsing so bad-but-expected lines never
// count as failures.
func SkipLine(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return true
	}
	if strings.Trim(s, "-=_* ") == "" {
		return true
	}
	upper := strings.ToUpper(s)
	for _, w := range summaryWords {
		if strings.HasPrefix(upper, w) {
			return true
		}
	}
	return false
}

// IsHeaderLine reports whether a line repeats the given header (bank
// exports re-print the header after page breaks).
func IsHeaderLine(line, header string) bool {
	return header != "" && strings.EqualFold(strings.TrimSpace(line), strings.TrimSpace(header))
}
