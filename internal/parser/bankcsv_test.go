package parser_test

import (
	"testing"

	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/parser"
)

const bankCSVFixture = `Data;Historico;Documento;Valor;Tipo;Favorecido
25/11/2025;TARIFA PACOTE SERVICOS;000123456;139,20;D;
26/11/2025;TED RECEBIDA;000123460;1.500,00;C;Célia Costa
`

func TestCSVBankSource_Parse(t *testing.T) {
	src := parser.NewCSVBankSource(testOptions())
	res := src.Parse(bankCSVFixture, "extrato_banco.csv")

	if len(res.BankEntries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.BankEntries))
	}
	if res.Confidence != 1 {
		t.Errorf("confidence = %f, want 1", res.Confidence)
	}

	debit := res.BankEntries[0]
	if debit.Amount.Cents != -13920 || debit.Direction != domain.Debit {
		t.Errorf("debit entry = %d cents, %s", debit.Amount.Cents, debit.Direction)
	}
	if debit.AccountRef != "000123456" {
		t.Errorf("account ref = %q", debit.AccountRef)
	}

	credit := res.BankEntries[1]
	if credit.Amount.Cents != 150000 || credit.Direction != domain.Credit {
		t.Errorf("credit entry = %d cents, %s", credit.Amount.Cents, credit.Direction)
	}
	if credit.Counterparty.Normalized != "CELIA COSTA" {
		t.Errorf("counterparty = %q", credit.Counterparty.Normalized)
	}
}

func TestCSVBankSource_ReorderedColumns(t *testing.T) {
	content := "Tipo;Valor;Data;Historico\nD;139,20;25/11/2025;TARIFA\n"
	src := parser.NewCSVBankSource(testOptions())
	res := src.Parse(content, "extrato.csv")

	if len(res.BankEntries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.BankEntries))
	}
	entry := res.BankEntries[0]
	if entry.Date != "2025-11-25" || entry.Amount.Cents != -13920 {
		t.Errorf("entry = %s, %d cents", entry.Date, entry.Amount.Cents)
	}
	if entry.Description != "TARIFA" {
		t.Errorf("description = %q", entry.Description)
	}
}

func TestCSVBankSource_HeaderlessFallback(t *testing.T) {
	content := "25/11/2025;TARIFA;000123;139,20;D\n26/11/2025;TED;000124;1.500,00;C\n"
	src := parser.NewCSVBankSource(testOptions())
	res := src.Parse(content, "extrato.csv")

	if len(res.BankEntries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.BankEntries))
	}
	if res.BankEntries[0].Direction != domain.Debit {
		t.Errorf("first entry direction = %s", res.BankEntries[0].Direction)
	}
}

func TestCSVBankSource_BadRowCounted(t *testing.T) {
	content := bankCSVFixture + "sem data;TARIFA;;x;D;\n"
	src := parser.NewCSVBankSource(testOptions())
	res := src.Parse(content, "extrato.csv")

	if res.FailedLines != 1 {
		t.Errorf("failed lines = %d, want 1", res.FailedLines)
	}
	if len(res.BankEntries) != 2 {
		t.Errorf("entries = %d, want 2", len(res.BankEntries))
	}
}
