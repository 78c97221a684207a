package parser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/infer"
	"github.com/openfinbr/conciliador/internal/normalize"
)

// ContributionSource parses the pivoted contribution spreadsheet: one
// row per person, with a repeating (date, value) column pair for each
// month. Every non-empty monthly value cell becomes one canonical
// transaction attributed to that person.
//
//	Nome;CPF;Jan Data;Jan Valor;Fev Data;Fev Valor;...
//	CELIA COSTA DOS SANTOS;390.533.447-05;05/01/2025;150,00;;;...
type ContributionSource struct {
	opts Options
}

func NewContributionSource(opts Options) *ContributionSource {
	return &ContributionSource{opts: opts}
}

func (s *ContributionSource) Name() string    { return "contribution-pivot" }
func (s *ContributionSource) Version() string { return "1.0" }

var ptMonths = map[string]int{
	"JAN": 1, "FEV": 2, "MAR": 3, "ABR": 4, "MAI": 5, "JUN": 6,
	"JUL": 7, "AGO": 8, "SET": 9, "OUT": 10, "NOV": 11, "DEZ": 12,
}

// monthPair is one (date, value) column pair from the pivoted header.
type monthPair struct {
	label    string
	month    int
	dateCol  int
	valueCol int
}

func (s *ContributionSource) Detect(content, filename string) int {
	score := 0
	lower := strings.ToLower(filename)
	if strings.Contains(lower, "contribui") || strings.Contains(lower, "dizimo") ||
		strings.Contains(lower, "mensalidade") {
		score += 30
	}
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "NOME") {
			score += 20
		}
		months := 0
		for m := range ptMonths {
			if strings.Contains(upper, m) {
				months++
			}
		}
		if months >= 2 {
			score += 10 * months
		}
		break
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (s *ContributionSource) Parse(content, sourceFile string) *ParseResult {
	res := &ParseResult{Parser: s.Name(), SourceFile: sourceFile}
	builder := domain.ProvenanceBuilder{
		SourceFile:    sourceFile,
		ParserName:    s.Name(),
		ParserVersion: s.Version(),
		Clock:         s.opts.clock(),
	}

	delim := sniffDelimiter(content)
	var pairs []monthPair
	nameCol, docCol := -1, -1
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

		if pairs == nil {
			p, name, doc, ok := locatePivotColumns(fields)
			if ok {
				pairs, nameCol, docCol = p, name, doc
				continue
			}
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: pivot header not recognized", lineNo))
			continue
		}

		if s.buildRow(fields, pairs, nameCol, docCol, builder, line, lineNo, res) {
			succeeded++
		} else {
			res.FailedLines++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unparseable contribution row", lineNo))
		}
	}

	res.finish(succeeded)
	return res
}

// locatePivotColumns reads the pivoted header: the name/document columns
// plus one (date, value) pair per month label found.
func locatePivotColumns(fields []string) (pairs []monthPair, nameCol, docCol int, ok bool) {
	nameCol, docCol = -1, -1
	var dates = map[string]int{}

	for i, f := range fields {
		upper := strings.ToUpper(strings.TrimSpace(f))
		switch upper {
		case "NOME", "NAME", "CONTRIBUINTE":
			nameCol = i
			continue
		case "CPF", "CNPJ", "DOCUMENTO":
			docCol = i
			continue
		}
		for m, num := range ptMonths {
			if !strings.HasPrefix(upper, m) {
				continue
			}
			if strings.Contains(upper, "DATA") {
				dates[m] = i
			} else if strings.Contains(upper, "VALOR") {
				dateCol := -1
				if d, found := dates[m]; found {
					dateCol = d
				}
				pairs = append(pairs, monthPair{label: m, month: num, dateCol: dateCol, valueCol: i})
			}
		}
	}
	return pairs, nameCol, docCol, nameCol >= 0 && len(pairs) >= 2
}

// buildRow emits one person plus one transaction per non-empty monthly
// value cell. A missing date cell falls back to the first day of the
// pair's month in the configured default year, with a warning.
func (s *ContributionSource) buildRow(fields []string, pairs []monthPair, nameCol, docCol int, builder domain.ProvenanceBuilder, raw string, lineNo int, res *ParseResult) bool {
	at := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	name := normalize.NormalizeName(at(nameCol), s.opts.Names)
	if name.IsEmpty() {
		return false
	}
	doc := normalize.ParseDocument(at(docCol))

	person := &domain.CanonicalPerson{
		ID:         uuid.NewString(),
		Name:       name,
		Document:   doc,
		Provenance: builder.Stamp(raw, lineNo),
	}
	res.Persons = append(res.Persons, person)

	year := s.opts.Dates.DefaultYear
	for _, pair := range pairs {
		value := at(pair.valueCol)
		if value == "" {
			continue
		}
		amount := normalize.ParseAmount(value)
		if !amount.Valid {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: bad %s value %q", lineNo, pair.label, value))
			continue
		}

		var warnings []string
		warnings = append(warnings, amount.Warnings...)

		date, ok := normalize.ParseDate(at(pair.dateCol), s.opts.Dates)
		if !ok {
			if year == 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %s cell has no date and no default year", lineNo, pair.label))
				continue
			}
			date = fmt.Sprintf("%04d-%02d-01", year, pair.month)
			warnings = append(warnings, fmt.Sprintf("no date for %s, defaulted to first of month", pair.label))
		}

		prov := builder.Stamp(raw, lineNo, warnings...)
		prov.Position = pair.label

		res.Transactions = append(res.Transactions, &domain.CanonicalTransaction{
			ID:           uuid.NewString(),
			Date:         date,
			Amount:       domain.NewMoney(amount.Cents),
			Description:  "contribuicao " + strings.ToLower(pair.label),
			Counterparty: name,
			Document:     doc,
			PersonID:     person.ID,
			Provenance:   prov,
		})
	}
	return true
}
