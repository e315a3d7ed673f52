// Package object defines the immutable entities stored in a truth
// repository: claims, verifications, axioms, and contexts.
package object

import "time"

// Type tags a stored entity.
type Type string

const (
	TypeClaim        Type = "claim"
	TypeVerification Type = "verification"
	TypeAxiom        Type = "axiom"
	TypeContext      Type = "context"
)

// AllTypes lists every storable object type.
func AllTypes() []Type {
	return []Type{TypeClaim, TypeVerification, TypeAxiom, TypeContext}
}

// TruthObject is the common surface of all stored entities.
//
// The hash is a pure function of the canonical payload: two objects with
// identical canonical content are the same object. Mutable record metadata
// (a claim's state, for example) stays outside the payload so that a state
// transition never changes an object's identity.
type TruthObject interface {
	// ObjectType returns the type tag.
	ObjectType() Type

	// ObjectHash returns the content hash, or "" before storage.
	ObjectHash() string

	// SetHash records the computed content hash on the object.
	SetHash(h string)

	// CanonicalPayload returns the identity fields that feed the
	// content hash. Key order is irrelevant; canonicalization happens
	// in the hashing layer.
	CanonicalPayload() map[string]any

	// CreatedAt returns the creation instant (UTC).
	CreatedAt() time.Time
}

// VerifierResult is one validator's successful contribution to a
// verification: a confidence in [0,1] plus free-text reasoning.
type VerifierResult struct {
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func now() time.Time {
	return time.Now().UTC()
}
