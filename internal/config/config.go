package config

import (
	"os"
	"strconv"
)

// Config holds all pipeline configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Observability
	LogLevel     string
	OTLPEndpoint string

	// Parsing
	DefaultYear      int  // completes abbreviated dates like "4-Aug"
	USDatesFirst     bool // mm/dd-first disambiguation for ambiguous dates
	MinDetectScore   int  // below this, a file counts as unrecognized
	MaxParallelFiles int
	NameConfigPath   string // optional YAML stopword/alias overrides

	// Matching — the empirically tuned constants live here, not in code.
	Match MatchConfig
}

// MatchConfig carries the tuned thresholds of the identity resolver and
// the financial matcher. Validated against labeled fixtures; nothing in
// here is canonical law.
type MatchConfig struct {
	DateWindowDays       int
	AmountToleranceCents int64
	MatchFloor           int // financial match acceptance floor
	IdentityFloor        int // identity candidate acceptance floor
	HighCutoff           int // score >= this => high confidence
	MediumCutoff         int // score >= this => medium confidence
}

// DefaultMatchConfig returns the fixture-validated thresholds.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		DateWindowDays:       3,
		AmountToleranceCents: 0,
		MatchFloor:           60,
		IdentityFloor:        40,
		HighCutoff:           80,
		MediumCutoff:         55,
	}
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		DefaultYear:      getEnvInt("DEFAULT_YEAR", 0),
		USDatesFirst:     getEnv("US_DATES_FIRST", "false") == "true",
		MinDetectScore:   getEnvInt("MIN_DETECT_SCORE", 30),
		MaxParallelFiles: getEnvInt("MAX_PARALLEL_FILES", 8),
		NameConfigPath:   getEnv("NAME_CONFIG_PATH", ""),

		Match: MatchConfig{
			DateWindowDays:       getEnvInt("DATE_WINDOW_DAYS", 3),
			AmountToleranceCents: int64(getEnvInt("AMOUNT_TOLERANCE_CENTS", 0)),
			MatchFloor:           getEnvInt("MATCH_FLOOR", 60),
			IdentityFloor:        getEnvInt("IDENTITY_FLOOR", 40),
			HighCutoff:           getEnvInt("HIGH_CUTOFF", 80),
			MediumCutoff:         getEnvInt("MEDIUM_CUTOFF", 55),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
