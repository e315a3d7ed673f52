package object

import "time"

// ClaimState tracks where a claim sits in its verification lifecycle.
type ClaimState string

const (
	StateStaged   ClaimState = "STAGED"
	StateVerified ClaimState = "VERIFIED"
	StateRejected ClaimState = "REJECTED"
)

// Claim categories.
const (
	CategoryFactual      = "factual"
	CategoryDefinitional = "definitional"
	CategoryOpinion      = "opinion"
)

// Claim is a submitted statement awaiting or having undergone verification.
// Claims are append-only: they are never deleted, and the only mutation is
// the state transition driven by a referencing Verification.
type Claim struct {
	Hash       string     `json:"hash,omitempty"`
	Content    string     `json:"content"`
	Domain     string     `json:"domain"`
	Category   string     `json:"category"`
	Confidence float64    `json:"confidence"` // Caller-declared prior
	State      ClaimState `json:"state"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewClaim builds a staged claim with defaults applied.
func NewClaim(content, domain, category string, confidence float64) *Claim {
	if domain == "" {
		domain = "general"
	}
	if category == "" {
		category = CategoryFactual
	}
	if confidence <= 0 {
		confidence = 0.5
	}
	return &Claim{
		Content:    content,
		Domain:     domain,
		Category:   category,
		Confidence: confidence,
		State:      StateStaged,
		Timestamp:  now(),
	}
}

func (c *Claim) ObjectType() Type     { return TypeClaim }
func (c *Claim) ObjectHash() string   { return c.Hash }
func (c *Claim) SetHash(h string)     { c.Hash = h }
func (c *Claim) CreatedAt() time.Time { return c.Timestamp }

// CanonicalPayload covers the claim's identity: content, domain, and
// category. State, confidence, and timestamp are record metadata - two
// submissions of the same statement dedup to one object.
func (c *Claim) CanonicalPayload() map[string]any {
	return map[string]any{
		"type":     string(TypeClaim),
		"content":  c.Content,
		"domain":   c.Domain,
		"category": c.Category,
	}
}
