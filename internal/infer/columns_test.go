package infer_test

import (
	"testing"

	"github.com/openfinbr/conciliador/internal/infer"
)

func TestInferField(t *testing.T) {
	cases := []struct {
		in   string
		want infer.FieldKind
	}{
		{"", infer.KindEmpty},
		{"   ", infer.KindEmpty},
		{"25/11/2025", infer.KindDate},
		{"2025-11-25", infer.KindDate},
		{"4-Aug", infer.KindDate},
		{"1.234,56", infer.KindMoney},
		{"139,20 D", infer.KindMoney},
		{"(100,00)", infer.KindMoney},
		{"390.533.447-05", infer.KindDocument},
		{"11.222.333/0001-81", infer.KindDocument},
		{"000123456", infer.KindInteger},
		{"TARIFA PACOTE SERVICOS", infer.KindText},
		{"CELIA COSTA", infer.KindText},
	}
	for _, tc := range cases {
		if got := infer.InferField(tc.in); got != tc.want {
			t.Errorf("InferField(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSkipLine(t *testing.T) {
	skip := []string{
		"",
		"    ",
		"-----------------",
		"=== === ===",
		"TOTAL GERAL;;;1.234,56",
		"Saldo anterior 1.000,00",
	}
	for _, line := range skip {
		if !infer.SkipLine(line) {
			t.Errorf("SkipLine(%q) should be true", line)
		}
	}

	keep := []string{
		"25/11/2025;TARIFA;139,20;D",
		"CELIA COSTA;390.533.447-05",
	}
	for _, line := range keep {
		if infer.SkipLine(line) {
			t.Errorf("SkipLine(%q) should be false", line)
		}
	}
}

func TestIsHeaderLine(t *testing.T) {
	if !infer.IsHeaderLine("  Data;Historico;Valor  ", "Data;Historico;Valor") {
		t.Error("repeated header should be recognized")
	}
	if infer.IsHeaderLine("25/11/2025;TARIFA;139,20", "Data;Historico;Valor") {
		t.Error("data line is not a header")
	}
}

func TestRealignRow(t *testing.T) {
	want := []infer.FieldKind{infer.KindDate, infer.KindText, infer.KindMoney}

	// Already aligned.
	row := []string{"25/11/2025", "TARIFA", "139,20"}
	if got, ok := infer.RealignRow(row, want); !ok || got[0] != "25/11/2025" {
		t.Errorf("aligned row should pass unchanged: %v ok=%v", got, ok)
	}

	// A spurious leading field shifted everything right.
	shifted := []string{"", "25/11/2025", "TARIFA", "139,20"}
	got, ok := infer.RealignRow(shifted, want)
	if !ok {
		t.Fatal("shifted row should realign")
	}
	if got[0] != "25/11/2025" || got[2] != "139,20" {
		t.Errorf("realigned = %v", got)
	}

	// Ragged tail padded when text is expected last.
	wantTailText := []infer.FieldKind{infer.KindDate, infer.KindMoney, infer.KindText}
	ragged := []string{"25/11/2025", "139,20"}
	if _, ok := infer.RealignRow(ragged, wantTailText); !ok {
		t.Error("ragged row with trailing text column should realign")
	}

	// Hopeless rows stay broken.
	if _, ok := infer.RealignRow([]string{"garbage", "also garbage"}, want); ok {
		t.Error("unfixable row must not claim alignment")
	}
}
