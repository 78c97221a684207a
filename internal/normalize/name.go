// Package normalize holds the pure normalization functions of the
// pipeline: personal names, CPF/CNPJ documents, locale-formatted money
// strings and dates. Everything here is deterministic and side-effect
// free; configuration comes in as explicit values, never module state.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/openfinbr/conciliador/internal/domain"
)

// NameConfig configures name normalization. Stopwords are dropped after
// tokenization; Aliases rewrite single tokens (nickname -> formal name).
// Both are explicit values so per-locale or per-tenant overrides stay
// testable.
type NameConfig struct {
	Stopwords map[string]bool
	Aliases   map[string]string
}

// DefaultNameConfig returns the pt-BR defaults: the connective particles
// common in Brazilian personal names and a small nickname alias map.
func DefaultNameConfig() NameConfig {
	stop := map[string]bool{
		"DA": true, "DE": true, "DO": true,
		"DAS": true, "DOS": true, "E": true,
	}
	aliases := map[string]string{
		"ZE":    "JOSE",
		"ZEZE":  "JOSE",
		"TONI":  "ANTONIO",
		"TONHO": "ANTONIO",
		"CHICO": "FRANCISCO",
		"BETO":  "ROBERTO",
		"NANDO": "FERNANDO",
		"LULA":  "LUIZ",
		"MARIC": "MARIA",
		"DUDA":  "EDUARDA",
	}
	return NameConfig{Stopwords: stop, Aliases: aliases}
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName runs the full normalization pipeline over a raw personal
// name: collapse whitespace, flatten parenthesized aliases into tokens,
// uppercase, strip diacritics, tokenize, drop stopwords, apply aliases.
// The original string is retained for display.
func NormalizeName(raw string, cfg NameConfig) domain.NormalizedName {
	out := domain.NormalizedName{Original: raw}

	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return out
	}

	// Parenthesized content usually carries a nickname or alias; keep it
	// as ordinary tokens instead of discarding it.
	s = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ").Replace(s)

	s = strings.ToUpper(s)

	if stripped, _, err := transform.String(stripAccents, s); err == nil {
		s = stripped
	}

	var tokens []string
	for _, tok := range strings.Fields(s) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if tok == "" || cfg.Stopwords[tok] {
			continue
		}
		if alias, ok := cfg.Aliases[tok]; ok {
			tok = alias
		}
		tokens = append(tokens, tok)
	}

	out.Tokens = tokens
	out.Normalized = strings.Join(tokens, " ")
	if len(tokens) > 0 {
		out.FirstToken = tokens[0]
		out.LastToken = tokens[len(tokens)-1]
	}
	return out
}
