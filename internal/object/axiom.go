package object

import "time"

// AxiomType classifies an axiom's epistemic status.
type AxiomType string

const (
	AxiomEmpirical    AxiomType = "empirical"    // Repeatedly observed
	AxiomDefinitional AxiomType = "definitional" // True by definition
	AxiomLogical      AxiomType = "logical"      // Derivable from other axioms
)

// Axiom is a claim promoted after repeated or strong verification. Promotion
// is always an explicit operation, never automatic.
type Axiom struct {
	Hash      string    `json:"hash,omitempty"`
	ClaimHash string    `json:"claim_hash"`
	Content   string    `json:"content"`
	Domain    string    `json:"domain"`
	AxiomType AxiomType `json:"axiom_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAxiom promotes a verified claim into an axiom.
func NewAxiom(claim *Claim, at AxiomType) *Axiom {
	if at == "" {
		at = AxiomEmpirical
	}
	return &Axiom{
		ClaimHash: claim.Hash,
		Content:   claim.Content,
		Domain:    claim.Domain,
		AxiomType: at,
		Timestamp: now(),
	}
}

func (a *Axiom) ObjectType() Type     { return TypeAxiom }
func (a *Axiom) ObjectHash() string   { return a.Hash }
func (a *Axiom) SetHash(h string)     { a.Hash = h }
func (a *Axiom) CreatedAt() time.Time { return a.Timestamp }

func (a *Axiom) CanonicalPayload() map[string]any {
	return map[string]any{
		"type":       string(TypeAxiom),
		"claim_hash": a.ClaimHash,
		"content":    a.Content,
		"domain":     a.Domain,
		"axiom_type": string(a.AxiomType),
	}
}
