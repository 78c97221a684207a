package normalize

import (
	"fmt"
	"strings"

	"github.com/openfinbr/conciliador/internal/domain"
)

var (
	cpfWeights1  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfWeights2  = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ParseDocument normalizes and validates a CPF/CNPJ. Masked or partial
// documents (containing *, X or ?) are flagged invalid with reason
// "format" without attempting digit validation. The display string is
// always produced so invalid documents remain inspectable.
func ParseDocument(raw string) domain.Document {
	trimmed := strings.TrimSpace(raw)
	if strings.ContainsAny(strings.ToUpper(trimmed), "*X?") {
		return domain.Document{
			Type:          domain.DocUnknown,
			Digits:        trimmed,
			Display:       trimmed,
			Valid:         false,
			InvalidReason: domain.ReasonFormat,
		}
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch len(d) {
	case 11:
		return validateCPF(d)
	case 14:
		return validateCNPJ(d)
	default:
		return domain.Document{
			Type:          domain.DocUnknown,
			Digits:        d,
			Display:       trimmed,
			Valid:         false,
			InvalidReason: domain.ReasonLength,
		}
	}
}

func validateCPF(d string) domain.Document {
	doc := domain.Document{Type: domain.DocCPF, Digits: d, Display: FormatCPF(d)}

	if allSame(d) {
		doc.InvalidReason = domain.ReasonAllSame
		return doc
	}
	if checkDigit(d[:9], cpfWeights1) != int(d[9]-'0') ||
		checkDigit(d[:10], cpfWeights2) != int(d[10]-'0') {
		doc.InvalidReason = domain.ReasonCheckDigit
		return doc
	}
	doc.Valid = true
	return doc
}

func validateCNPJ(d string) domain.Document {
	doc := domain.Document{Type: domain.DocCNPJ, Digits: d, Display: FormatCNPJ(d)}

	if allSame(d) {
		doc.InvalidReason = domain.ReasonAllSame
		return doc
	}
	if checkDigit(d[:12], cnpjWeights1) != int(d[12]-'0') ||
		checkDigit(d[:13], cnpjWeights2) != int(d[13]-'0') {
		doc.InvalidReason = domain.ReasonCheckDigit
		return doc
	}
	doc.Valid = true
	return doc
}

// checkDigit computes one weighted mod-11 check digit. A result of 10 or
// 11 maps to 0, per the official algorithm.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * weights[i]
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// FormatCPF renders 11 digits as 000.000.000-00.
func FormatCPF(d string) string {
	if len(d) != 11 {
		return d
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[:3], d[3:6], d[6:9], d[9:])
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00.
func FormatCNPJ(d string) string {
	if len(d) != 14 {
		return d
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[:2], d[2:5], d[5:8], d[8:12], d[12:])
}
