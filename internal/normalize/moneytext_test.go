package normalize_test

import (
	"testing"

	"github.com/openfinbr/conciliador/internal/normalize"
)

func TestParseAmount_Separators(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1.234,56", 123456},
		{"1,234.56", 123456},
		{"1234,56", 123456},
		{"1234.56", 123456},
		{"1.234.567,89", 123456789},
		{"1,234,567.89", 123456789},
		{"1.234", 123400},  // single separator, 3 trailing digits: grouping
		{"1,234", 123400},
		{"10,5", 1050},
		{"100", 10000},
		{"0,99", 99},
	}
	for _, tc := range cases {
		got := normalize.ParseAmount(tc.in)
		if !got.Valid {
			t.Errorf("ParseAmount(%q) should be valid", tc.in)
			continue
		}
		if got.Cents != tc.want {
			t.Errorf("ParseAmount(%q).Cents = %d, want %d", tc.in, got.Cents, tc.want)
		}
	}
}

func TestParseAmount_Signs(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"(100,00)", -10000},
		{"-100,00", -10000},
		{"+100,00", 10000},
		{"139,20 D", -13920},
		{"139,20D", -13920},
		{"139,20 C", 13920},
		{"1.500,00 C", 150000},
		{"R$ 1.000,00", 100000},
		{`"1.234,56"`, 123456},
	}
	for _, tc := range cases {
		got := normalize.ParseAmount(tc.in)
		if !got.Valid {
			t.Errorf("ParseAmount(%q) should be valid", tc.in)
			continue
		}
		if got.Cents != tc.want {
			t.Errorf("ParseAmount(%q).Cents = %d, want %d", tc.in, got.Cents, tc.want)
		}
	}
}

func TestParseAmount_TruncatesExcessDecimals(t *testing.T) {
	got := normalize.ParseAmount("10,5678")
	if !got.Valid {
		t.Fatal("expected valid")
	}
	if got.Cents != 1056 {
		t.Errorf("Cents = %d, want 1056", got.Cents)
	}
	if len(got.Warnings) == 0 {
		t.Error("expected a truncation warning")
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12a34", "D", "--5"} {
		if got := normalize.ParseAmount(in); got.Valid {
			t.Errorf("ParseAmount(%q) should be invalid, got cents %d", in, got.Cents)
		}
	}
}
