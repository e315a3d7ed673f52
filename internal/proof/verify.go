package proof

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyProofStandalone verifies a certificate in any wire form without
// repository access. It never panics on malformed input: the outcome is
// always (isValid, message, parsedCertificate), with a nil certificate when
// the input could not be parsed or is structurally incomplete.
func VerifyProofStandalone(input any) (bool, string, *Certificate) {
	cert, err := ParseCertificate(input)
	if err != nil {
		return false, fmt.Sprintf("malformed certificate: %v", err), nil
	}

	if missing := cert.missingFields(); len(missing) > 0 {
		return false, fmt.Sprintf("certificate is missing required fields: %s", strings.Join(missing, ", ")), nil
	}

	if cert.FormatVersion != FormatVersion {
		return false, fmt.Sprintf("unsupported format version %q (expected %q)", cert.FormatVersion, FormatVersion), cert
	}

	pub, err := hex.DecodeString(cert.IssuerPublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false, "issuer public key is not a valid Ed25519 key", cert
	}
	sig, err := hex.DecodeString(cert.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false, "signature is not a valid Ed25519 signature", cert
	}

	payload, err := cert.SigningBytes()
	if err != nil {
		return false, fmt.Sprintf("cannot canonicalize certificate: %v", err), cert
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), payload, sig) {
		return false, "signature verification failed: certificate content has been tampered with", cert
	}

	// Cross-check the consensus flag against the embedded threshold, when
	// one is declared.
	if cert.Threshold > 0 {
		expected := cert.ConsensusValue >= cert.Threshold
		if cert.ConsensusPassed != expected {
			return false, fmt.Sprintf("consensus_passed=%v disagrees with value %.3f against threshold %.3f", cert.ConsensusPassed, cert.ConsensusValue, cert.Threshold), cert
		}
	}

	return true, "certificate is valid", cert
}
