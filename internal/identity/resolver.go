// Package identity decides whether two name records denote the same
// person. Blocking by name token keeps the comparison cost near O(k);
// scoring combines token-set similarity, edit distance, a prefix bonus
// for truncated bank-statement names, and document equality.
package identity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/openfinbr/conciliador/internal/config"
	"github.com/openfinbr/conciliador/internal/domain"
)

// Feature weights. Contributions are additive and the final score is
// clamped to [0,100] so it always reads as a percentage.
const (
	weightJaccard     = 40
	weightEditDist    = 35
	weightPrefixBonus = 15
	weightDocMatch    = 25
)

// Query is one name (plus optional document) to resolve.
type Query struct {
	Name     domain.NormalizedName
	Document domain.Document
}

// IdentityMatch is the scored outcome of resolving a query against the
// registry. Evidence explains every point of the score.
type IdentityMatch struct {
	CandidateID string                `json:"candidate_id"`
	Score       int                   `json:"score"`
	Confidence  domain.ConfidenceTier `json:"confidence"`
	Evidence    []domain.Evidence     `json:"evidence"`
}

// Resolver holds the blocking index over a person registry.
type Resolver struct {
	cfg     config.MatchConfig
	byFirst map[string][]*domain.CanonicalPerson
	byLast  map[string][]*domain.CanonicalPerson
}

// NewResolver indexes the person registry for blocking lookups.
func NewResolver(cfg config.MatchConfig, persons []*domain.CanonicalPerson) *Resolver {
	r := &Resolver{
		cfg:     cfg,
		byFirst: make(map[string][]*domain.CanonicalPerson),
		byLast:  make(map[string][]*domain.CanonicalPerson),
	}
	for _, p := range persons {
		if p.Name.FirstToken != "" {
			r.byFirst[p.Name.FirstToken] = append(r.byFirst[p.Name.FirstToken], p)
		}
		if p.Name.LastToken != "" {
			r.byLast[p.Name.LastToken] = append(r.byLast[p.Name.LastToken], p)
		}
	}
	return r
}

// Candidates returns the blocking subset for a name: everyone sharing
// the first token, falling back to the last token when the first-token
// block is empty.
func (r *Resolver) Candidates(name domain.NormalizedName) []*domain.CanonicalPerson {
	if name.FirstToken == "" {
		return nil
	}
	if block := r.byFirst[name.FirstToken]; len(block) > 0 {
		return block
	}
	return r.byLast[name.LastToken]
}

// Score rates how likely query and person denote the same person,
// returning the 0-100 score and the evidence behind it.
func (r *Resolver) Score(q Query, p *domain.CanonicalPerson) (int, []domain.Evidence) {
	var evidence []domain.Evidence
	score := 0

	jac := jaccard(q.Name.Tokens, p.Name.Tokens)
	contrib := int(jac*weightJaccard + 0.5)
	score += contrib
	evidence = append(evidence, domain.Evidence{
		Feature:      "token_overlap",
		Contribution: contrib,
		Detail:       fmt.Sprintf("jaccard %.2f over %d vs %d tokens", jac, len(q.Name.Tokens), len(p.Name.Tokens)),
	})

	sim := editSimilarity(q.Name.Normalized, p.Name.Normalized)
	contrib = int(sim*weightEditDist + 0.5)
	score += contrib
	evidence = append(evidence, domain.Evidence{
		Feature:      "edit_distance",
		Contribution: contrib,
		Detail:       fmt.Sprintf("normalized levenshtein similarity %.2f", sim),
	})

	if hasPrefixRelation(q.Name.Normalized, p.Name.Normalized) {
		score += weightPrefixBonus
		evidence = append(evidence, domain.Evidence{
			Feature:      "prefix_match",
			Contribution: weightPrefixBonus,
			Detail:       "one name is a truncation of the other",
		})
	}

	if q.Document.Valid && p.Document.Valid && q.Document.Digits == p.Document.Digits {
		score += weightDocMatch
		evidence = append(evidence, domain.Evidence{
			Feature:      "document_match",
			Contribution: weightDocMatch,
			Detail:       "identical valid " + strings.ToUpper(string(q.Document.Type)),
		})
	}

	return domain.ClampScore(score, evidence)
}

// FindBestMatch returns the top candidate for a query, or false when no
// candidate clears the identity floor.
func (r *Resolver) FindBestMatch(q Query) (*IdentityMatch, bool) {
	candidates := r.Candidates(q.Name)
	if len(candidates) == 0 {
		return nil, false
	}

	type scored struct {
		person   *domain.CanonicalPerson
		score    int
		evidence []domain.Evidence
	}
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		s, ev := r.Score(q, c)
		results = append(results, scored{person: c, score: s, evidence: ev})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].person.ID < results[j].person.ID
	})

	best := results[0]
	if best.score < r.cfg.IdentityFloor {
		return nil, false
	}
	return &IdentityMatch{
		CandidateID: best.person.ID,
		Score:       best.score,
		Confidence:  r.Tier(best.score),
		Evidence:    best.evidence,
	}, true
}

// ResolveIdentities batches FindBestMatch over many queries. The result
// slice is aligned with the input; unresolved queries hold nil.
func (r *Resolver) ResolveIdentities(queries []Query) []*IdentityMatch {
	out := make([]*IdentityMatch, len(queries))
	for i, q := range queries {
		if m, ok := r.FindBestMatch(q); ok {
			out[i] = m
		}
	}
	return out
}

// Tier buckets a score into the configured confidence tiers.
func (r *Resolver) Tier(score int) domain.ConfidenceTier {
	switch {
	case score >= r.cfg.HighCutoff:
		return domain.TierHigh
	case score >= r.cfg.MediumCutoff:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// jaccard is |A∩B| / |A∪B| over the token sets.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// editSimilarity is 1 - distance/maxLen over the full normalized strings.
func editSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	dist := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(dist)/float64(maxLen)
}

// hasPrefixRelation reports whether one normalized name truncates the
// other at a token boundary, the usual shape of names cut short by
// narrow bank-statement fields. Identical names are not truncations;
// they already collect the full token and edit-distance weights.
func hasPrefixRelation(a, b string) bool {
	if a == "" || b == "" || a == b {
		return false
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	// Require a token boundary so "ANA" gets no bonus against "ANALIA".
	return strings.HasPrefix(longer, shorter+" ")
}
