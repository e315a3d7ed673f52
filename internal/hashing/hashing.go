// Package hashing canonicalizes truth objects and computes their content
// hashes. Canonical form is RFC 8785 (JSON Canonicalization Scheme) so that
// identical content yields an identical digest on every platform; the digest
// is hex-encoded SHA-256. This is the dedup and integrity backbone of the
// repository.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// DefaultShortLen is the display truncation used by ShortHash.
const DefaultShortLen = 8

// CanonicalBytes returns the RFC 8785 canonical serialization of the
// object's identity payload. These bytes feed both the content hash and
// human-facing object display.
func CanonicalBytes(o object.TruthObject) ([]byte, error) {
	raw, err := json.Marshal(o.CanonicalPayload())
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return canonical, nil
}

// ContentHash computes the hex SHA-256 digest of the object's canonical
// form. Identical canonical content always produces an identical digest.
func ContentHash(o object.TruthObject) (string, error) {
	canonical, err := CanonicalBytes(o)
	if err != nil {
		return "", err
	}
	return HashBytes(canonical), nil
}

// HashBytes computes the hex SHA-256 digest of raw bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyHash recomputes the object's content hash and compares it against
// the hash the object claims. Used on every load to detect corruption.
func VerifyHash(o object.TruthObject) bool {
	computed, err := ContentHash(o)
	if err != nil {
		return false
	}
	return computed == o.ObjectHash()
}

// ShortHash truncates a digest for human-facing display. Never use the
// result as a storage key.
func ShortHash(digest string, n int) string {
	if n <= 0 {
		n = DefaultShortLen
	}
	if len(digest) <= n {
		return digest
	}
	return digest[:n]
}
