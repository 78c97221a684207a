package parser

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/infer"
	"github.com/openfinbr/conciliador/internal/normalize"
)

// LedgerSource parses the general ledger / transaction CSV export:
//
//	Data;Documento;Descricao;Favorecido;Valor;Conta
//
// Column order occasionally drifts in these exports, so rows that do not
// line up with the declared schema go through infer.RealignRow before
// being rejected.
type LedgerSource struct {
	opts Options
}

func NewLedgerSource(opts Options) *LedgerSource { return &LedgerSource{opts: opts} }

func (s *LedgerSource) Name() string    { return "ledger-csv" }
func (s *LedgerSource) Version() string { return "1.2" }

var ledgerHeaderTokens = []string{"DATA", "DOCUMENTO", "FAVORECIDO", "VALOR", "CONTA"}

var ledgerRowKinds = []infer.FieldKind{
	infer.KindDate,
	infer.KindDocument,
	infer.KindText,
	infer.KindText,
	infer.KindMoney,
	infer.KindText,
}

func (s *LedgerSource) Detect(content, filename string) int {
	score := 0
	lower := strings.ToLower(filename)
	if strings.Contains(lower, "razao") || strings.Contains(lower, "ledger") ||
		strings.Contains(lower, "lancamento") {
		score += 30
	}
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		score += headerScore(line, ledgerHeaderTokens) * 7 / 10
		break
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (s *LedgerSource) Parse(content, sourceFile string) *ParseResult {
	res := &ParseResult{Parser: s.Name(), SourceFile: sourceFile}
	builder := domain.ProvenanceBuilder{
		SourceFile:    sourceFile,
		ParserName:    s.Name(),
		ParserVersion: s.Version(),
		Clock:         s.opts.clock(),
	}

	delim := sniffDelimiter(content)
	succeeded := 0
	headerSeen := false
	var header string

	for i, line := range splitLines(content) {
		lineNo := i + 1
		if infer.SkipLine(line) || infer.IsHeaderLine(line, header) {
			continue
		}
		if !headerSeen && headerScore(line, ledgerHeaderTokens) >= 60 {
			headerSeen = true
			header = line
			continue
		}

		fields, err := readCSVLine(line, delim)
		if err != nil {
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}

		fields, aligned := infer.RealignRow(fields, ledgerRowKinds)
		var warnings []string
		if !aligned && len(fields) < 5 {
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: expected at least 5 columns, got %d", lineNo, len(fields)))
			continue
		}
		if !aligned {
			warnings = append(warnings, "columns did not realign cleanly")
		}

		txn, ok := s.buildTransaction(fields, builder, line, lineNo, warnings)
		if !ok {
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unparseable ledger row", lineNo))
			continue
		}
		res.Transactions = append(res.Transactions, txn)
		succeeded++
	}

	res.finish(succeeded)
	return res
}

func (s *LedgerSource) buildTransaction(fields []string, builder domain.ProvenanceBuilder, raw string, lineNo int, warnings []string) (*domain.CanonicalTransaction, bool) {
	date, ok := normalize.ParseDate(fields[0], s.opts.Dates)
	if !ok {
		return nil, false
	}

	amount := normalize.ParseAmount(fields[4])
	if !amount.Valid {
		return nil, false
	}
	warnings = append(warnings, amount.Warnings...)

	accountRef := ""
	if len(fields) > 5 {
		accountRef = strings.TrimSpace(fields[5])
	}

	return &domain.CanonicalTransaction{
		ID:           uuid.NewString(),
		Date:         date,
		Amount:       domain.NewMoney(amount.Cents),
		Description:  strings.TrimSpace(fields[2]),
		Counterparty: normalize.NormalizeName(fields[3], s.opts.Names),
		Document:     normalize.ParseDocument(fields[1]),
		AccountRef:   accountRef,
		Provenance:   builder.Stamp(raw, lineNo, warnings...),
	}, true
}

// readCSVLine parses one physical line as CSV with the given delimiter.
func readCSVLine(line string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	return r.Read()
}
