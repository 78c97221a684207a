package parser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/infer"
	"github.com/openfinbr/conciliador/internal/normalize"
)

// CSVBankSource parses the CSV bank extract with an explicit
// debit/credit marker column:
//
//	Data;Historico;Documento;Valor;Tipo
//	25/11/2025;TARIFA PACOTE SERVICOS;000123456;139,20;D
//
// Columns are located by header name, so reordered exports still parse.
type CSVBankSource struct {
	opts Options
}

func NewCSVBankSource(opts Options) *CSVBankSource { return &CSVBankSource{opts: opts} }

func (s *CSVBankSource) Name() string    { return "bank-csv" }
func (s *CSVBankSource) Version() string { return "1.3" }

var bankCSVHeaderTokens = []string{"DATA", "HISTORICO", "VALOR", "TIPO"}

// bankColumns maps header names to column indexes for one file.
type bankColumns struct {
	date, history, doc, value, kind, favored int
}

func (s *CSVBankSource) Detect(content, filename string) int {
	score := 0
	lower := strings.ToLower(filename)
	if strings.Contains(lower, "extrato") || strings.Contains(lower, "banco") {
		score += 20
	}
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		score += headerScore(line, bankCSVHeaderTokens) * 8 / 10
		break
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (s *CSVBankSource) Parse(content, sourceFile string) *ParseResult {
	res := &ParseResult{Parser: s.Name(), SourceFile: sourceFile}
	builder := domain.ProvenanceBuilder{
		SourceFile:    sourceFile,
		ParserName:    s.Name(),
		ParserVersion: s.Version(),
		Clock:         s.opts.clock(),
	}

	delim := sniffDelimiter(content)
	cols := bankColumns{date: -1, history: -1, doc: -1, value: -1, kind: -1, favored: -1}
	headerFound := false
	var header string
	succeeded := 0

	for i, line := range splitLines(content) {
		lineNo := i + 1
		if infer.SkipLine(line) {
			continue
		}

		fields, err := readCSVLine(line, delim)
		if err != nil {
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}

		if !headerFound {
			if c, ok := locateBankColumns(fields); ok {
				cols = c
				headerFound = true
				header = line
				continue
			}
			// Headerless export: assume the default column order.
			cols = bankColumns{date: 0, history: 1, doc: 2, value: 3, kind: 4, favored: -1}
			headerFound = true
		}
		if infer.IsHeaderLine(line, header) {
			continue
		}

		entry, ok := s.buildEntry(fields, cols, builder, line, lineNo)
		if !ok {
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unparseable bank row", lineNo))
			continue
		}
		res.BankEntries = append(res.BankEntries, entry)
		succeeded++
	}

	res.finish(succeeded)
	return res
}

func locateBankColumns(fields []string) (bankColumns, bool) {
	cols := bankColumns{date: -1, history: -1, doc: -1, value: -1, kind: -1, favored: -1}
	for i, f := range fields {
		switch strings.ToUpper(strings.TrimSpace(f)) {
		case "DATA", "DATE":
			cols.date = i
		case "HISTORICO", "DESCRICAO", "DESCRIPTION":
			cols.history = i
		case "DOCUMENTO", "DOC", "DOC.":
			cols.doc = i
		case "VALOR", "VALOR (R$)", "AMOUNT":
			cols.value = i
		case "TIPO", "D/C", "DC":
			cols.kind = i
		case "FAVORECIDO", "CONTRAPARTE":
			cols.favored = i
		}
	}
	return cols, cols.date >= 0 && cols.value >= 0
}

func (s *CSVBankSource) buildEntry(fields []string, cols bankColumns, builder domain.ProvenanceBuilder, raw string, lineNo int) (*domain.CanonicalBankEntry, bool) {
	at := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	date, ok := normalize.ParseDate(at(cols.date), s.opts.Dates)
	if !ok {
		return nil, false
	}

	// The marker column, when present, carries the sign.
	rawAmount := at(cols.value)
	if kind := strings.ToUpper(at(cols.kind)); kind == "D" || kind == "C" {
		rawAmount += " " + kind
	}
	amount := normalize.ParseAmount(rawAmount)
	if !amount.Valid {
		return nil, false
	}

	direction := domain.Credit
	if amount.Sign < 0 {
		direction = domain.Debit
	}

	var counterparty domain.NormalizedName
	if favored := at(cols.favored); favored != "" {
		counterparty = normalize.NormalizeName(favored, s.opts.Names)
	}

	return &domain.CanonicalBankEntry{
		ID:           uuid.NewString(),
		Date:         date,
		Amount:       domain.NewMoney(amount.Cents),
		Direction:    direction,
		Description:  at(cols.history),
		Counterparty: counterparty,
		AccountRef:   at(cols.doc),
		Provenance:   builder.Stamp(raw, lineNo, amount.Warnings...),
	}, true
}
