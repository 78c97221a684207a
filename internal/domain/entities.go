package domain

// ============================================================
// Canonical entities
// ============================================================

// Direction of a bank statement entry.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// NormalizedName is the matching-ready form of a personal name. Original
// is kept for display; Normalized and the token fields drive matching.
type NormalizedName struct {
	Original   string   `json:"original"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens"`
	FirstToken string   `json:"first_token"`
	LastToken  string   `json:"last_token"`
}

// IsEmpty reports whether normalization produced no tokens.
func (n NormalizedName) IsEmpty() bool { return len(n.Tokens) == 0 }

// DocumentType discriminates Brazilian taxpayer documents.
type DocumentType string

const (
	DocCPF     DocumentType = "cpf"
	DocCNPJ    DocumentType = "cnpj"
	DocUnknown DocumentType = "unknown"
)

// InvalidReason explains why a document failed validation.
type InvalidReason string

const (
	ReasonLength     InvalidReason = "length"
	ReasonFormat     InvalidReason = "format"
	ReasonAllSame    InvalidReason = "all_same"
	ReasonCheckDigit InvalidReason = "check_digit"
)

// Document is a validated (or rejected) CPF/CNPJ. Display is always
// populated so invalid documents remain inspectable.
type Document struct {
	Type          DocumentType  `json:"type"`
	Digits        string        `json:"digits"`
	Display       string        `json:"display"`
	Valid         bool          `json:"valid"`
	InvalidReason InvalidReason `json:"invalid_reason,omitempty"`
}

// CanonicalPerson is one person consolidated from the source registries.
type CanonicalPerson struct {
	ID         string         `json:"id"`
	Name       NormalizedName `json:"name"`
	Document   Document       `json:"document"`
	Provenance Provenance     `json:"provenance"`
}

// CanonicalTransaction is one accounting transaction in canonical form.
// PersonID/PersonScore/PersonEvidence are filled by the dataset builder
// when inline identity linking is enabled; the person record itself is
// never touched.
type CanonicalTransaction struct {
	ID             string         `json:"id"`
	Date           string         `json:"date"` // ISO yyyy-mm-dd
	Amount         Money          `json:"amount"`
	Description    string         `json:"description"`
	Counterparty   NormalizedName `json:"counterparty"`
	Document       Document       `json:"document"`
	AccountRef     string         `json:"account_ref,omitempty"`
	PersonID       string         `json:"person_id,omitempty"`
	PersonScore    int            `json:"person_score,omitempty"`
	PersonEvidence []Evidence     `json:"person_evidence,omitempty"`
	Provenance     Provenance     `json:"provenance"`
}

// CanonicalBankEntry is one bank statement line in canonical form.
type CanonicalBankEntry struct {
	ID           string         `json:"id"`
	Date         string         `json:"date"` // ISO yyyy-mm-dd
	Amount       Money          `json:"amount"`
	Direction    Direction      `json:"direction"`
	Description  string         `json:"description"`
	Counterparty NormalizedName `json:"counterparty"`
	AccountRef   string         `json:"account_ref,omitempty"`
	Provenance   Provenance     `json:"provenance"`
}

// Evidence is one feature's contribution to a match score. The evidence
// list is the audit trail for why a match was accepted; contributions
// sum to the final (clamped) score.
type Evidence struct {
	Feature      string `json:"feature"`
	Contribution int    `json:"contribution"`
	Detail       string `json:"detail"`
}

// ClampScore caps an additive score at 100, shaving the overage off the
// trailing evidence entries. No entry goes below zero, and contributions
// still sum to the returned score.
func ClampScore(score int, evidence []Evidence) (int, []Evidence) {
	over := score - 100
	for i := len(evidence) - 1; i >= 0 && over > 0; i-- {
		cut := evidence[i].Contribution
		if cut > over {
			cut = over
		}
		evidence[i].Contribution -= cut
		over -= cut
	}
	if score > 100 {
		score = 100
	}
	return score, evidence
}

// ConfidenceTier buckets a continuous match score.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)
