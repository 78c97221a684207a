package normalize

import (
	"strconv"
	"strings"
)

// AmountResult is the outcome of parsing a locale-formatted money string.
// Cents already carries the applied sign.
type AmountResult struct {
	Cents    int64
	Sign     int
	Valid    bool
	Warnings []string
}

// ParseAmount converts a locale-formatted money string into integer
// cents without ever routing the value through a float. It handles pt-BR
// (1.234,56) and US (1,234.56) separators, currency symbols, quotes,
// parenthesized negatives and trailing D/C direction markers common in
// bank exports (D = debit = negative, C = credit = positive).
func ParseAmount(raw string) AmountResult {
	res := AmountResult{Sign: 1}

	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if s == "" {
		return res
	}

	// Parenthesized amounts are negative in accounting exports.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		res.Sign = -1
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Trailing direction marker.
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "D") || strings.HasSuffix(upper, "C") {
		marker := upper[len(upper)-1]
		body := strings.TrimSpace(s[:len(s)-1])
		if body != "" && strings.IndexFunc(body, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			if marker == 'D' {
				res.Sign = -1
			}
			s = body
		}
	}

	if strings.HasPrefix(s, "-") {
		res.Sign = -1
		s = strings.TrimSpace(s[1:])
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimSpace(s[1:])
	}

	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return AmountResult{Sign: res.Sign}
	}

	intPart, fracPart, warnings, ok := splitDecimal(s)
	if !ok {
		return AmountResult{Sign: res.Sign, Warnings: warnings}
	}
	res.Warnings = warnings

	cents := int64(0)
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return AmountResult{Sign: res.Sign, Warnings: warnings}
		}
		cents = v * 100
	}
	if fracPart != "" {
		v, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return AmountResult{Sign: res.Sign, Warnings: warnings}
		}
		cents += v
	}

	res.Cents = int64(res.Sign) * cents
	res.Valid = true
	return res
}

// splitDecimal decides which of '.'/',' is the decimal separator,
// strips the other as thousands grouping, and returns the integer and
// two-digit fraction parts as plain digit strings.
//
// When both separators appear, the rightmost one is the decimal. With a
// single separator, one or two trailing digits mean decimal, exactly
// three mean grouping, four or more mean a decimal with excess precision
// (truncated with a warning). A repeated separator is always grouping.
func splitDecimal(s string) (intPart, fracPart string, warnings []string, ok bool) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	decIdx := -1
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decIdx = lastDot
		if lastComma > lastDot {
			decIdx = lastComma
		}
	case lastDot >= 0:
		decIdx = classifySingleSeparator(s, ".", lastDot)
	case lastComma >= 0:
		decIdx = classifySingleSeparator(s, ",", lastComma)
	}

	var rawInt, rawFrac string
	if decIdx >= 0 {
		rawInt, rawFrac = s[:decIdx], s[decIdx+1:]
		if !allDigits(rawFrac) {
			return "", "", warnings, false
		}
	} else {
		rawInt = s
	}

	rawInt = strings.ReplaceAll(rawInt, ".", "")
	rawInt = strings.ReplaceAll(rawInt, ",", "")
	if rawInt == "" && rawFrac == "" {
		return "", "", warnings, false
	}
	if rawInt != "" && !allDigits(rawInt) {
		return "", "", warnings, false
	}

	switch {
	case len(rawFrac) > 2:
		warnings = append(warnings, "truncated excess decimal digits: "+rawFrac)
		rawFrac = rawFrac[:2]
	case len(rawFrac) == 1:
		rawFrac += "0"
	case rawFrac == "":
		rawFrac = "00"
	}

	if rawInt == "" {
		rawInt = "0"
	}
	return rawInt, rawFrac, warnings, true
}

// classifySingleSeparator returns the decimal index for a string with
// only one separator kind, or -1 when the separator is grouping.
func classifySingleSeparator(s, sep string, last int) int {
	if strings.Count(s, sep) > 1 {
		return -1
	}
	trailing := len(s) - last - 1
	if trailing == 3 {
		return -1 // 1.234 style grouping
	}
	if trailing >= 1 {
		return last
	}
	return -1
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
