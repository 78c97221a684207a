package normalize_test

import (
	"strings"
	"testing"

	"github.com/openfinbr/conciliador/internal/normalize"
)

func TestNormalizeName_Pipeline(t *testing.T) {
	cfg := normalize.DefaultNameConfig()

	cases := []struct {
		in         string
		normalized string
		first      string
		last       string
	}{
		{"Célia Costa dos Santos", "CELIA COSTA SANTOS", "CELIA", "SANTOS"},
		{"  joão   da  silva  ", "JOAO SILVA", "JOAO", "SILVA"},
		{"Maria de Lourdes e Souza", "MARIA LOURDES SOUZA", "MARIA", "SOUZA"},
		{"José (Zé) Pereira", "JOSE JOSE PEREIRA", "JOSE", "PEREIRA"},
		{"ANTÔNIO", "ANTONIO", "ANTONIO", "ANTONIO"},
	}
	for _, tc := range cases {
		got := normalize.NormalizeName(tc.in, cfg)
		if got.Normalized != tc.normalized {
			t.Errorf("NormalizeName(%q).Normalized = %q, want %q", tc.in, got.Normalized, tc.normalized)
		}
		if got.FirstToken != tc.first || got.LastToken != tc.last {
			t.Errorf("NormalizeName(%q) blocking keys = %q/%q, want %q/%q",
				tc.in, got.FirstToken, got.LastToken, tc.first, tc.last)
		}
		if got.Original != tc.in {
			t.Errorf("original string must be preserved, got %q", got.Original)
		}
	}
}

func TestNormalizeName_AliasExpansion(t *testing.T) {
	cfg := normalize.DefaultNameConfig()
	got := normalize.NormalizeName("Beto Carvalho", cfg)
	if got.Normalized != "ROBERTO CARVALHO" {
		t.Errorf("alias not applied: %q", got.Normalized)
	}
}

func TestNormalizeName_Empty(t *testing.T) {
	got := normalize.NormalizeName("   ", normalize.DefaultNameConfig())
	if !got.IsEmpty() || got.FirstToken != "" || got.LastToken != "" {
		t.Errorf("empty input must produce empty blocking keys: %+v", got)
	}
}

func TestLoadNameConfig_MergesOverDefaults(t *testing.T) {
	yaml := `
stopwords: [JUNIOR]
aliases:
  NANDA: FERNANDA
`
	cfg, err := normalize.LoadNameConfig(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadNameConfig: %v", err)
	}

	got := normalize.NormalizeName("Nanda da Silva Junior", cfg)
	if got.Normalized != "FERNANDA SILVA" {
		t.Errorf("override not applied: %q", got.Normalized)
	}
	// Defaults survive the merge.
	if got := normalize.NormalizeName("Beto dos Santos", cfg); got.Normalized != "ROBERTO SANTOS" {
		t.Errorf("defaults lost after merge: %q", got.Normalized)
	}
}
