package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/infer"
	"github.com/openfinbr/conciliador/internal/normalize"
)

// FixedBankSource parses the fixed-width multi-line bank statement
// format: each entry starts with a date-anchored line carrying document
// number, description and a D/C-suffixed amount; indented continuation
// lines extend the description or name the counterparty.
//
//	25/11/2025 000123456  TARIFA PACOTE SERVICOS        139,20 D
//	           REMETENTE: EMPRESA XPTO LTDA
type FixedBankSource struct {
	opts Options
}

func NewFixedBankSource(opts Options) *FixedBankSource { return &FixedBankSource{opts: opts} }

func (s *FixedBankSource) Name() string    { return "bank-fixed" }
func (s *FixedBankSource) Version() string { return "1.1" }

var (
	fixedEntryPattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\S+)\s+(.+?)\s{2,}([\d.,]+)\s*([DCdc])\s*$`)
	accountPattern    = regexp.MustCompile(`AG[.: ]*(\d+)\s+C/?C[.: ]*([\d-]+)`)
	counterpartyLabel = regexp.MustCompile(`^(REMETENTE|FAVORECIDO|DESTINATARIO|PAGADOR)\s*:\s*(.+)$`)
)

func (s *FixedBankSource) Detect(content, filename string) int {
	score := 0
	if strings.Contains(strings.ToLower(filename), "extrato") {
		score += 20
	}

	lines := splitLines(content)
	entries, considered := 0, 0
	for _, line := range lines {
		if infer.SkipLine(line) {
			continue
		}
		considered++
		if fixedEntryPattern.MatchString(line) {
			entries++
		}
		if considered >= 50 {
			break
		}
	}
	if considered > 0 {
		score += entries * 80 / considered
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (s *FixedBankSource) Parse(content, sourceFile string) *ParseResult {
	res := &ParseResult{Parser: s.Name(), SourceFile: sourceFile}
	builder := domain.ProvenanceBuilder{
		SourceFile:    sourceFile,
		ParserName:    s.Name(),
		ParserVersion: s.Version(),
		Clock:         s.opts.clock(),
	}

	accountRef := ""
	succeeded := 0
	seenEntry := false
	var current *domain.CanonicalBankEntry
	var currentRaw []string
	var currentLine int
	var currentWarnings []string

	flush := func() {
		if current == nil {
			return
		}
		current.Provenance = builder.Stamp(strings.Join(currentRaw, "\n"), currentLine, currentWarnings...)
		res.BankEntries = append(res.BankEntries, current)
		succeeded++
		current, currentRaw, currentWarnings = nil, nil, nil
	}

	for i, line := range splitLines(content) {
		lineNo := i + 1

		if m := accountPattern.FindStringSubmatch(strings.ToUpper(line)); m != nil && accountRef == "" {
			accountRef = m[1] + "/" + m[2]
		}

		if infer.SkipLine(line) {
			continue
		}

		if m := fixedEntryPattern.FindStringSubmatch(line); m != nil {
			seenEntry = true
			flush()
			entry, warnings, ok := s.buildEntry(m, accountRef)
			if !ok {
				res.FailedLines++
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unparseable statement entry", lineNo))
				continue
			}
			current = entry
			currentRaw = []string{line}
			currentLine = lineNo
			currentWarnings = warnings
			continue
		}

		// Indented continuation of the current entry.
		if current != nil && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			currentRaw = append(currentRaw, line)
			s.applyContinuation(current, strings.TrimSpace(line))
			continue
		}

		// Statement preamble before the first entry carries account and
		// period banners, not data.
		if !seenEntry {
			continue
		}

		res.FailedLines++
		res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unrecognized statement line", lineNo))
	}
	flush()

	res.finish(succeeded)
	return res
}

func (s *FixedBankSource) buildEntry(m []string, accountRef string) (*domain.CanonicalBankEntry, []string, bool) {
	date, ok := normalize.ParseDate(m[1], s.opts.Dates)
	if !ok {
		return nil, nil, false
	}

	amount := normalize.ParseAmount(m[4] + " " + m[5])
	if !amount.Valid {
		return nil, nil, false
	}

	direction := domain.Credit
	if amount.Sign < 0 {
		direction = domain.Debit
	}

	return &domain.CanonicalBankEntry{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      domain.NewMoney(amount.Cents),
		Direction:   direction,
		Description: strings.TrimSpace(m[3]),
		AccountRef:  accountRef,
	}, amount.Warnings, true
}

// applyContinuation folds an indented line into the current entry: a
// labeled line names the counterparty, anything else extends the
// description.
func (s *FixedBankSource) applyContinuation(entry *domain.CanonicalBankEntry, line string) {
	if m := counterpartyLabel.FindStringSubmatch(strings.ToUpper(line)); m != nil {
		entry.Counterparty = normalize.NormalizeName(m[2], s.opts.Names)
		return
	}
	entry.Description = strings.TrimSpace(entry.Description + " " + line)
}
