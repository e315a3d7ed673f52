// Package proof issues and verifies portable proof certificates: signed
// records binding a committed claim, its verification, and the consensus
// outcome. Anyone holding a certificate can verify it against the issuer's
// public key without access to the issuing repository.
package proof

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// FormatVersion identifies the certificate wire format this package emits.
const FormatVersion = "1.0"

// compactPrefix marks the condensed single-token encoding.
const compactPrefix = "TGP1."

// Certificate is an immutable, signed proof record. Mutating any field
// after signing invalidates the signature by construction.
type Certificate struct {
	ClaimHash        string   `json:"claim_hash"`
	ClaimContent     string   `json:"claim_content"`
	ClaimDomain      string   `json:"claim_domain"`
	VerificationHash string   `json:"verification_hash"`
	ConsensusValue   float64  `json:"consensus_value"`
	ConsensusPassed  bool     `json:"consensus_passed"`
	Validators       []string `json:"validators"`
	Threshold        float64  `json:"threshold,omitempty"`
	Timestamp        string   `json:"timestamp"`
	IssuerPublicKey  string   `json:"issuer_public_key"`
	Signature        string   `json:"signature,omitempty"`
	FormatVersion    string   `json:"format_version"`
}

// SigningBytes returns the RFC 8785 canonical serialization of the
// certificate with the signature field cleared. Both wire forms reduce to
// these bytes, so signatures verify identically regardless of transport.
func (c *Certificate) SigningBytes() ([]byte, error) {
	unsigned := *c
	unsigned.Signature = ""
	raw, err := json.Marshal(&unsigned)
	if err != nil {
		return nil, fmt.Errorf("marshal certificate: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize certificate: %w", err)
	}
	return canonical, nil
}

// ToJSON returns the full, human-readable wire form.
func (c *Certificate) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal certificate: %w", err)
	}
	return data, nil
}

// ToCompact returns the condensed single-token wire form, suitable for URLs
// or QR-style payloads. It decodes back to an identical canonical
// certificate.
func (c *Certificate) ToCompact() (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal certificate: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize certificate: %w", err)
	}
	return compactPrefix + base64.RawURLEncoding.EncodeToString(canonical), nil
}

// ParseCertificate accepts any supported wire form: a *Certificate, a JSON
// object (map or raw bytes), a JSON string, or a compact token. Malformed
// input yields an error wrapping ErrInvalidCertificate, never a panic.
func ParseCertificate(input any) (*Certificate, error) {
	switch v := input.(type) {
	case nil:
		return nil, fmt.Errorf("%w: empty input", ErrInvalidCertificate)
	case *Certificate:
		if v == nil {
			return nil, fmt.Errorf("%w: empty input", ErrInvalidCertificate)
		}
		clone := *v
		return &clone, nil
	case Certificate:
		clone := v
		return &clone, nil
	case string:
		return parseCertificateString(v)
	case []byte:
		return parseCertificateString(string(v))
	case json.RawMessage:
		return parseCertificateString(string(v))
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal certificate map: %v", ErrInvalidCertificate, err)
		}
		return decodeCertificateJSON(raw)
	default:
		return nil, fmt.Errorf("%w: unsupported input type %T", ErrInvalidCertificate, input)
	}
}

func parseCertificateString(s string) (*Certificate, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidCertificate)
	}
	if len(s) > len(compactPrefix) && s[:len(compactPrefix)] == compactPrefix {
		decoded, err := base64.RawURLEncoding.DecodeString(s[len(compactPrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: decode compact form: %v", ErrInvalidCertificate, err)
		}
		return decodeCertificateJSON(decoded)
	}
	return decodeCertificateJSON([]byte(s))
}

func decodeCertificateJSON(data []byte) (*Certificate, error) {
	var cert Certificate
	if err := json.Unmarshal(data, &cert); err != nil {
		return nil, fmt.Errorf("%w: parse JSON: %v", ErrInvalidCertificate, err)
	}
	return &cert, nil
}

// missingFields lists required fields absent from the certificate.
func (c *Certificate) missingFields() []string {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	require("claim_hash", c.ClaimHash)
	require("claim_content", c.ClaimContent)
	require("verification_hash", c.VerificationHash)
	require("timestamp", c.Timestamp)
	require("issuer_public_key", c.IssuerPublicKey)
	require("signature", c.Signature)
	require("format_version", c.FormatVersion)
	if len(c.Validators) == 0 {
		missing = append(missing, "validators")
	}
	return missing
}
