package object

import (
	"sort"
	"time"

	"github.com/lumensyntax-org/truthgit/internal/consensus"
)

// Verification is the immutable record of one consensus outcome for one
// claim. Verifications chain through Parent links, newest at HEAD.
type Verification struct {
	Hash            string                    `json:"hash,omitempty"`
	ClaimHash       string                    `json:"claim_hash"`
	VerifierResults map[string]VerifierResult `json:"verifier_results"`
	Consensus       consensus.Result          `json:"consensus"`
	Trigger         string                    `json:"trigger"`
	Parent          string                    `json:"parent,omitempty"`
	Timestamp       time.Time                 `json:"timestamp"`
}

// NewVerification builds a verification for the given claim. parent is the
// hash of the previous verification in the history chain, or "" for the
// first.
func NewVerification(claimHash string, results map[string]VerifierResult, cons consensus.Result, trigger, parent string) *Verification {
	if trigger == "" {
		trigger = "cli"
	}
	return &Verification{
		ClaimHash:       claimHash,
		VerifierResults: results,
		Consensus:       cons,
		Trigger:         trigger,
		Parent:          parent,
		Timestamp:       now(),
	}
}

func (v *Verification) ObjectType() Type     { return TypeVerification }
func (v *Verification) ObjectHash() string   { return v.Hash }
func (v *Verification) SetHash(h string)     { v.Hash = h }
func (v *Verification) CreatedAt() time.Time { return v.Timestamp }

// CanonicalPayload covers every field including the timestamp: each
// verification is a distinct event, never deduplicated.
func (v *Verification) CanonicalPayload() map[string]any {
	results := make(map[string]any, len(v.VerifierResults))
	for name, r := range v.VerifierResults {
		results[name] = map[string]any{
			"confidence": r.Confidence,
			"reasoning":  r.Reasoning,
		}
	}
	return map[string]any{
		"type":             string(TypeVerification),
		"claim_hash":       v.ClaimHash,
		"verifier_results": results,
		"consensus": map[string]any{
			"value":          v.Consensus.Value,
			"passed":         v.Consensus.Passed,
			"consensus_type": string(v.Consensus.Type),
		},
		"trigger":   v.Trigger,
		"parent":    v.Parent,
		"timestamp": v.Timestamp.Format(time.RFC3339Nano),
	}
}

// ValidatorNames returns the contributing validator names in sorted order.
func (v *Verification) ValidatorNames() []string {
	names := make([]string, 0, len(v.VerifierResults))
	for name := range v.VerifierResults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
