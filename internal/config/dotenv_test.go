package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openfinbr/conciliador/internal/config"
)

func TestLoadDotEnv(t *testing.T) {
	content := `# local overrides
LOG_LEVEL=debug

INPUT_DIR="/tmp/dados"
DEFAULT_YEAR='2025'
ALREADY_SET=from-file
not a pair
`
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("INPUT_DIR", "")
	t.Setenv("DEFAULT_YEAR", "")
	t.Setenv("ALREADY_SET", "from-env")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if got := os.Getenv("LOG_LEVEL"); got != "debug" {
		t.Errorf("LOG_LEVEL = %q, want debug", got)
	}
	if got := os.Getenv("INPUT_DIR"); got != "/tmp/dados" {
		t.Errorf("INPUT_DIR = %q, quotes must be trimmed", got)
	}
	if got := os.Getenv("DEFAULT_YEAR"); got != "2025" {
		t.Errorf("DEFAULT_YEAR = %q, quotes must be trimmed", got)
	}
	if got := os.Getenv("ALREADY_SET"); got != "from-env" {
		t.Errorf("ALREADY_SET = %q, exported values must win over the file", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
