package normalize

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// nameConfigFile is the YAML shape of a stopword/alias override file:
//
//	stopwords: [DA, DE, JR]
//	aliases:
//	  BETO: ROBERTO
type nameConfigFile struct {
	Stopwords []string          `yaml:"stopwords"`
	Aliases   map[string]string `yaml:"aliases"`
}

// LoadNameConfig reads a YAML override and merges it over the pt-BR
// defaults. Entries in the file add to (and for aliases, override) the
// defaults; there is no way to remove a default, which keeps override
// files additive and easy to reason about.
func LoadNameConfig(r io.Reader) (NameConfig, error) {
	cfg := DefaultNameConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}

	var file nameConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, err
	}

	for _, w := range file.Stopwords {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			cfg.Stopwords[w] = true
		}
	}
	for from, to := range file.Aliases {
		from = strings.ToUpper(strings.TrimSpace(from))
		to = strings.ToUpper(strings.TrimSpace(to))
		if from != "" && to != "" {
			cfg.Aliases[from] = to
		}
	}
	return cfg, nil
}
