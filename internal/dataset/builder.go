// Package dataset consolidates parsed batches into one indexed
// canonical dataset. It does not parse; it merges, indexes and
// optionally links transactions to persons via the identity resolver.
package dataset

import (
	"go.uber.org/zap"

	"github.com/openfinbr/conciliador/internal/config"
	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/identity"
	"github.com/openfinbr/conciliador/internal/infra/observability"
	"github.com/openfinbr/conciliador/internal/parser"
)

// Dataset is the consolidated, indexed canonical data for one run.
type Dataset struct {
	Persons      []*domain.CanonicalPerson      `json:"persons"`
	Transactions []*domain.CanonicalTransaction `json:"transactions"`
	BankEntries  []*domain.CanonicalBankEntry   `json:"bank_entries"`

	ByID         map[string]*domain.CanonicalPerson   `json:"-"`
	ByFirstToken map[string][]*domain.CanonicalPerson `json:"-"`
}

// BuildOptions controls consolidation.
type BuildOptions struct {
	LinkTransactions bool
	Match            config.MatchConfig
	Logger           *zap.Logger
	Metrics          *observability.Metrics
}

// Build consolidates a parsed batch into one Dataset. Persons appearing
// in several source files are merged (same valid document, or same
// normalized full name) with fused provenance; transactions referring to
// a pre-merge person ID are remapped to the surviving record.
func Build(batch *parser.BatchResult, opts BuildOptions) *Dataset {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ds := &Dataset{
		ByID:         make(map[string]*domain.CanonicalPerson),
		ByFirstToken: make(map[string][]*domain.CanonicalPerson),
	}

	idAlias := make(map[string]string) // pre-merge person ID -> surviving ID
	byKey := make(map[string]*domain.CanonicalPerson)

	for _, res := range batch.Results {
		for _, p := range res.Persons {
			key := personKey(p)
			if existing, ok := byKey[key]; ok {
				existing.Provenance = domain.MergeProvenances(existing.Provenance, p.Provenance)
				if !existing.Document.Valid && p.Document.Valid {
					existing.Document = p.Document
				}
				idAlias[p.ID] = existing.ID
				continue
			}
			byKey[key] = p
			ds.Persons = append(ds.Persons, p)
		}
		ds.Transactions = append(ds.Transactions, res.Transactions...)
		ds.BankEntries = append(ds.BankEntries, res.BankEntries...)
	}

	for _, p := range ds.Persons {
		ds.ByID[p.ID] = p
		if p.Name.FirstToken != "" {
			ds.ByFirstToken[p.Name.FirstToken] = append(ds.ByFirstToken[p.Name.FirstToken], p)
		}
	}

	for _, t := range ds.Transactions {
		if alias, ok := idAlias[t.PersonID]; ok {
			t.PersonID = alias
		}
	}

	if opts.LinkTransactions {
		linkTransactions(ds, opts, logger)
	}

	logger.Info("dataset built",
		zap.Int("persons", len(ds.Persons)),
		zap.Int("transactions", len(ds.Transactions)),
		zap.Int("bank_entries", len(ds.BankEntries)),
	)
	return ds
}

// linkTransactions resolves each unlinked transaction's counterparty
// against the person registry, recording the resolution score and
// evidence on the transaction. Person records are never modified.
func linkTransactions(ds *Dataset, opts BuildOptions, logger *zap.Logger) {
	resolver := identity.NewResolver(opts.Match, ds.Persons)

	linked := 0
	for _, t := range ds.Transactions {
		if t.PersonID != "" || t.Counterparty.IsEmpty() {
			continue
		}
		m, ok := resolver.FindBestMatch(identity.Query{Name: t.Counterparty, Document: t.Document})
		if !ok {
			continue
		}
		t.PersonID = m.CandidateID
		t.PersonScore = m.Score
		t.PersonEvidence = m.Evidence
		if opts.Metrics != nil {
			opts.Metrics.IncrIdentityTier(string(m.Confidence))
		}
		linked++
	}
	logger.Debug("linked transactions to persons", zap.Int("linked", linked))
}

// personKey is the merge key: valid document digits when available,
// otherwise the normalized full name.
func personKey(p *domain.CanonicalPerson) string {
	if p.Document.Valid {
		return "doc:" + p.Document.Digits
	}
	return "name:" + p.Name.Normalized
}
