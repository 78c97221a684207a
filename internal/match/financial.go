// Package match reconciles bank statement entries against accounting
// transactions. Blocking by date window and amount keeps the candidate
// sets small; scoring is additive with full evidence, and every entry
// ends in exactly one of three states: matched, duplicate_suspect or
// unmatched.
package match

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/openfinbr/conciliador/internal/config"
	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/identity"
	"github.com/openfinbr/conciliador/internal/infra/observability"
	"github.com/openfinbr/conciliador/internal/normalize"
)

var tracer = otel.Tracer("match/financial")

// Feature weights. Same-day same-amount alone must clear the default
// match floor with room to spare; every other feature only strengthens.
const (
	weightAmountExact     = 50
	weightAmountTolerance = 30
	weightDateMax         = 35
	weightDatePerDay      = 10
	weightCounterparty    = 20
	weightAccountRef      = 10
)

// Status is the terminal classification of a bank entry.
type Status string

const (
	StatusMatched          Status = "matched"
	StatusDuplicateSuspect Status = "duplicate_suspect"
	StatusUnmatched        Status = "unmatched"
)

// FinancialMatch scores one transaction against one bank entry.
type FinancialMatch struct {
	TransactionID string            `json:"transaction_id"`
	Score         int               `json:"score"`
	Status        Status            `json:"status"`
	Evidence      []domain.Evidence `json:"evidence"`
}

// MatchedPair is an accepted entry-transaction reconciliation.
type MatchedPair struct {
	Entry       *domain.CanonicalBankEntry   `json:"entry"`
	Transaction *domain.CanonicalTransaction `json:"transaction"`
	Score       int                          `json:"score"`
	Evidence    []domain.Evidence            `json:"evidence"`
}

// DuplicateSuspect flags ambiguous or conflicting claims.
type DuplicateSuspect struct {
	Entry          *domain.CanonicalBankEntry `json:"entry"`
	TransactionIDs []string                   `json:"transaction_ids"`
	Reason         string                     `json:"reason"`
}

// Summary carries the per-run counts.
type Summary struct {
	TotalEntries      int `json:"total_entries"`
	TotalTransactions int `json:"total_transactions"`
	Matched           int `json:"matched"`
	Unmatched         int `json:"unmatched"`
	DuplicateSuspects int `json:"duplicate_suspects"`
}

// ReconciliationResult is the primary output of a reconciliation run.
// Computed fresh every run; identical inputs produce identical results.
type ReconciliationResult struct {
	Matched           []MatchedPair                `json:"matched"`
	Unmatched         []*domain.CanonicalBankEntry `json:"unmatched"`
	DuplicateSuspects []DuplicateSuspect           `json:"duplicate_suspects"`
	Summary           Summary                      `json:"summary"`
}

// Matcher reconciles bank entries against transactions. The optional
// resolver adds counterparty-name evidence when a person registry is
// available.
type Matcher struct {
	cfg      config.MatchConfig
	resolver *identity.Resolver
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewMatcher creates a matcher. resolver may be nil when no person
// registry exists; metrics may be nil in library use.
func NewMatcher(cfg config.MatchConfig, resolver *identity.Resolver, logger *zap.Logger, metrics *observability.Metrics) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{cfg: cfg, resolver: resolver, logger: logger, metrics: metrics}
}

// txnIndex blocks transactions by ISO date for the window lookups.
type txnIndex struct {
	byDate map[string][]*domain.CanonicalTransaction
}

func indexTransactions(txns []*domain.CanonicalTransaction) *txnIndex {
	idx := &txnIndex{byDate: make(map[string][]*domain.CanonicalTransaction)}
	for _, t := range txns {
		idx.byDate[t.Date] = append(idx.byDate[t.Date], t)
	}
	return idx
}

// window returns candidates within ±days of date whose absolute amount
// is within toleranceCents of amount.
func (idx *txnIndex) window(date string, days int, amount domain.Money, toleranceCents int64) []*domain.CanonicalTransaction {
	var out []*domain.CanonicalTransaction
	for d := -days; d <= days; d++ {
		for _, t := range idx.byDate[normalize.ShiftDays(date, d)] {
			if t.Amount.Abs().EqualsWithin(amount.Abs(), toleranceCents) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Score rates one transaction against one bank entry.
func (m *Matcher) Score(entry *domain.CanonicalBankEntry, txn *domain.CanonicalTransaction) (int, []domain.Evidence) {
	var evidence []domain.Evidence
	score := 0

	switch {
	case entry.Amount.Abs().Cents == txn.Amount.Abs().Cents:
		score += weightAmountExact
		evidence = append(evidence, domain.Evidence{
			Feature:      "amount",
			Contribution: weightAmountExact,
			Detail:       "exact amount " + entry.Amount.Abs().Format(true),
		})
	case entry.Amount.Abs().EqualsWithin(txn.Amount.Abs(), m.cfg.AmountToleranceCents):
		score += weightAmountTolerance
		evidence = append(evidence, domain.Evidence{
			Feature:      "amount",
			Contribution: weightAmountTolerance,
			Detail: fmt.Sprintf("within tolerance: %s vs %s",
				entry.Amount.Abs().Format(true), txn.Amount.Abs().Format(true)),
		})
	}

	days := normalize.DaysBetween(entry.Date, txn.Date)
	if days < 0 {
		days = -days
	}
	if dateContrib := weightDateMax - weightDatePerDay*days; dateContrib > 0 {
		score += dateContrib
		evidence = append(evidence, domain.Evidence{
			Feature:      "date_proximity",
			Contribution: dateContrib,
			Detail:       fmt.Sprintf("%d day(s) apart", days),
		})
	}

	if m.resolver != nil && !entry.Counterparty.IsEmpty() && txn.PersonID != "" {
		if im, ok := m.resolver.FindBestMatch(identity.Query{Name: entry.Counterparty}); ok && im.CandidateID == txn.PersonID {
			contrib := im.Score * weightCounterparty / 100
			score += contrib
			evidence = append(evidence, domain.Evidence{
				Feature:      "counterparty",
				Contribution: contrib,
				Detail:       fmt.Sprintf("entry counterparty resolves to linked person (identity score %d)", im.Score),
			})
		}
	}

	if entry.AccountRef != "" && entry.AccountRef == txn.AccountRef {
		score += weightAccountRef
		evidence = append(evidence, domain.Evidence{
			Feature:      "account_ref",
			Contribution: weightAccountRef,
			Detail:       "matching account reference " + entry.AccountRef,
		})
	}

	return domain.ClampScore(score, evidence)
}

// FindBestFinancialMatch scores one entry against a transaction set and
// returns the best candidate, or false when nothing clears the floor.
func (m *Matcher) FindBestFinancialMatch(entry *domain.CanonicalBankEntry, txns []*domain.CanonicalTransaction) (*FinancialMatch, bool) {
	fm, _, ok := m.bestMatch(entry, indexTransactions(txns))
	return fm, ok
}

// bestMatch scores the blocked candidates for one entry. A second
// candidate above the floor marks the result duplicate_suspect.
func (m *Matcher) bestMatch(entry *domain.CanonicalBankEntry, idx *txnIndex) (*FinancialMatch, *domain.CanonicalTransaction, bool) {
	candidates := idx.window(entry.Date, m.cfg.DateWindowDays, entry.Amount, m.cfg.AmountToleranceCents)
	if len(candidates) == 0 {
		return nil, nil, false
	}

	type scored struct {
		txn      *domain.CanonicalTransaction
		score    int
		evidence []domain.Evidence
	}
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		s, ev := m.Score(entry, c)
		results = append(results, scored{txn: c, score: s, evidence: ev})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].txn.Date != results[j].txn.Date {
			return results[i].txn.Date < results[j].txn.Date
		}
		return results[i].txn.ID < results[j].txn.ID
	})

	best := results[0]
	if best.score < m.cfg.MatchFloor {
		return nil, nil, false
	}

	status := StatusMatched
	if len(results) > 1 && results[1].score >= m.cfg.MatchFloor {
		status = StatusDuplicateSuspect
	}
	return &FinancialMatch{
		TransactionID: best.txn.ID,
		Score:         best.score,
		Status:        status,
		Evidence:      best.evidence,
	}, best.txn, true
}

// ReconcileBatch classifies every bank entry against the transaction
// set. Entries are processed in deterministic order (date, then ID) so
// identical inputs always yield identical results.
func (m *Matcher) ReconcileBatch(ctx context.Context, entries []*domain.CanonicalBankEntry, txns []*domain.CanonicalTransaction) *ReconciliationResult {
	_, span := tracer.Start(ctx, "Matcher.ReconcileBatch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("entries", len(entries)),
		attribute.Int("transactions", len(txns)),
	)

	idx := indexTransactions(txns)

	ordered := make([]*domain.CanonicalBankEntry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].ID < ordered[j].ID
	})

	result := &ReconciliationResult{
		Summary: Summary{TotalEntries: len(entries), TotalTransactions: len(txns)},
	}
	claimed := make(map[string]string) // transaction ID -> claiming entry ID

	for _, entry := range ordered {
		fm, txn, ok := m.bestMatch(entry, idx)

		switch {
		case !ok:
			result.Unmatched = append(result.Unmatched, entry)
			m.countOutcome(StatusUnmatched)

		case fm.Status == StatusDuplicateSuspect:
			result.DuplicateSuspects = append(result.DuplicateSuspects, DuplicateSuspect{
				Entry:          entry,
				TransactionIDs: []string{fm.TransactionID},
				Reason:         "multiple transactions above the match floor",
			})
			m.countOutcome(StatusDuplicateSuspect)

		case claimed[fm.TransactionID] != "":
			result.DuplicateSuspects = append(result.DuplicateSuspects, DuplicateSuspect{
				Entry:          entry,
				TransactionIDs: []string{fm.TransactionID},
				Reason:         "transaction already claimed by entry " + claimed[fm.TransactionID],
			})
			m.countOutcome(StatusDuplicateSuspect)

		default:
			claimed[fm.TransactionID] = entry.ID
			result.Matched = append(result.Matched, MatchedPair{
				Entry:       entry,
				Transaction: txn,
				Score:       fm.Score,
				Evidence:    fm.Evidence,
			})
			m.countOutcome(StatusMatched)
		}
	}

	result.Summary.Matched = len(result.Matched)
	result.Summary.Unmatched = len(result.Unmatched)
	result.Summary.DuplicateSuspects = len(result.DuplicateSuspects)

	m.logger.Info("reconciliation complete",
		zap.Int("entries", result.Summary.TotalEntries),
		zap.Int("matched", result.Summary.Matched),
		zap.Int("unmatched", result.Summary.Unmatched),
		zap.Int("duplicate_suspects", result.Summary.DuplicateSuspects),
	)
	return result
}

func (m *Matcher) countOutcome(s Status) {
	if m.metrics != nil {
		m.metrics.IncrReconOutcome(string(s))
	}
}
