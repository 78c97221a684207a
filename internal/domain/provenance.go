package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Clock supplies the current time. Injected so provenance timestamps are
// reproducible in tests.
type Clock func() time.Time

// Provenance traces a canonical record back to its exact source location
// and the parser that produced it. Immutable after creation; derived
// copies are made with WithWarnings or MergeProvenances.
type Provenance struct {
	SourceFile    string    `json:"source_file"`
	LineNumber    int       `json:"line_number,omitempty"`
	Position      string    `json:"position,omitempty"`
	ParserName    string    `json:"parser_name"`
	ParserVersion string    `json:"parser_version"`
	ParsedAt      time.Time `json:"parsed_at"`
	RawHash       string    `json:"raw_hash"`
	Warnings      []string  `json:"warnings,omitempty"`
}

// ProvenanceBuilder stamps many records from the same source file without
// repeating the file/parser identity on every call.
type ProvenanceBuilder struct {
	SourceFile    string
	ParserName    string
	ParserVersion string
	Clock         Clock
}

// NewProvenanceBuilder returns a builder using the wall clock.
func NewProvenanceBuilder(sourceFile, parserName, parserVersion string) ProvenanceBuilder {
	return ProvenanceBuilder{
		SourceFile:    sourceFile,
		ParserName:    parserName,
		ParserVersion: parserVersion,
		Clock:         time.Now,
	}
}

// WithClock returns a copy of the builder using the given clock.
func (b ProvenanceBuilder) WithClock(clock Clock) ProvenanceBuilder {
	b.Clock = clock
	return b
}

// Stamp creates a Provenance for one parsed record. rawContent is the
// exact source bytes the record came from; its hash is the audit anchor.
func (b ProvenanceBuilder) Stamp(rawContent string, lineNumber int, warnings ...string) Provenance {
	clock := b.Clock
	if clock == nil {
		clock = time.Now
	}
	return Provenance{
		SourceFile:    b.SourceFile,
		LineNumber:    lineNumber,
		ParserName:    b.ParserName,
		ParserVersion: b.ParserVersion,
		ParsedAt:      clock(),
		RawHash:       HashContent(rawContent),
		Warnings:      append([]string(nil), warnings...),
	}
}

// WithWarnings returns a copy of p with the warnings appended. The
// receiver is not modified.
func (p Provenance) WithWarnings(warnings ...string) Provenance {
	merged := make([]string, 0, len(p.Warnings)+len(warnings))
	merged = append(merged, p.Warnings...)
	merged = append(merged, warnings...)
	p.Warnings = merged
	return p
}

// MergeProvenances fuses the provenance of a record derived from several
// raw sources: source files are unioned, warnings concatenated, and the
// merged hash is the hash of the concatenated input hashes.
func MergeProvenances(provs ...Provenance) Provenance {
	if len(provs) == 0 {
		return Provenance{}
	}
	if len(provs) == 1 {
		return provs[0]
	}

	seen := make(map[string]bool)
	var files []string
	var warnings []string
	var hashes []string
	latest := provs[0].ParsedAt

	for _, p := range provs {
		for _, f := range strings.Split(p.SourceFile, "+") {
			if f != "" && !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
		warnings = append(warnings, p.Warnings...)
		hashes = append(hashes, p.RawHash)
		if p.ParsedAt.After(latest) {
			latest = p.ParsedAt
		}
	}
	sort.Strings(files)

	return Provenance{
		SourceFile:    strings.Join(files, "+"),
		ParserName:    "merged",
		ParserVersion: provs[0].ParserVersion,
		ParsedAt:      latest,
		RawHash:       HashContent(strings.Join(hashes, "")),
		Warnings:      warnings,
	}
}

// StoredProvenance is the minimal provenance for records that came from a
// persisted store rather than a raw file.
func StoredProvenance(source string, clock Clock) Provenance {
	if clock == nil {
		clock = time.Now
	}
	return Provenance{
		SourceFile:    source,
		ParserName:    "store",
		ParserVersion: "0",
		ParsedAt:      clock(),
		RawHash:       HashContent(source),
	}
}

// HashContent returns the deterministic hex digest of content. Same bytes
// always produce the same hash; this is what makes provenance auditable.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
