package proof

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type allowAllChecker struct{}

func (allowAllChecker) CheckCommitted(claimHash, verificationHash string) error { return nil }

type denyChecker struct{}

func (denyChecker) CheckCommitted(claimHash, verificationHash string) error {
	return fmt.Errorf("claim %s is not committed", claimHash)
}

func sampleRequest() Request {
	return Request{
		ClaimHash:        "3f2a9c81aa55ee77",
		ClaimContent:     "Water boils at 100C at sea level",
		ClaimDomain:      "physics",
		VerificationHash: "b1c2d3e4f5a6b7c8",
		ConsensusValue:   0.92,
		ConsensusPassed:  true,
		Validators:       []string{"GPT", "OLLAMA:LLAMA3"},
		Threshold:        0.66,
	}
}

func newTestManager(t *testing.T, checker CommitChecker) *Manager {
	t.Helper()
	m := NewManager(t.TempDir(), checker)
	if err := m.GenerateKeypair(false); err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	return m
}

func TestGenerateKeypair(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	if m.KeysExist() {
		t.Fatal("Fresh manager reported existing keys")
	}
	if err := m.GenerateKeypair(false); err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	if !m.KeysExist() {
		t.Fatal("Keypair not persisted")
	}

	pub, err := m.PublicKeyHex()
	if err != nil {
		t.Fatalf("PublicKeyHex failed: %v", err)
	}
	if len(pub) != 64 {
		t.Errorf("Expected 64 hex chars of public key, got %d", len(pub))
	}

	if err := m.GenerateKeypair(false); !errors.Is(err, ErrKeyExists) {
		t.Errorf("Expected ErrKeyExists without regenerate, got %v", err)
	}
	if err := m.GenerateKeypair(true); err != nil {
		t.Errorf("Forced regeneration failed: %v", err)
	}
}

func TestCreateProof_RequiresKeys(t *testing.T) {
	m := NewManager(t.TempDir(), nil)
	if _, err := m.CreateProof(sampleRequest()); !errors.Is(err, ErrKeyMissing) {
		t.Errorf("Expected ErrKeyMissing, got %v", err)
	}
}

func TestCreateProof_ChecksCommit(t *testing.T) {
	m := newTestManager(t, denyChecker{})
	if _, err := m.CreateProof(sampleRequest()); err == nil {
		t.Error("Expected rejection for uncommitted claim")
	}
}

func TestProofRoundtrip(t *testing.T) {
	m := newTestManager(t, allowAllChecker{})
	cert, err := m.CreateProof(sampleRequest())
	if err != nil {
		t.Fatalf("CreateProof failed: %v", err)
	}
	if cert.FormatVersion != FormatVersion {
		t.Errorf("Unexpected format version %q", cert.FormatVersion)
	}

	valid, message, parsed := VerifyProofStandalone(cert)
	if !valid {
		t.Fatalf("Fresh certificate rejected: %s", message)
	}
	if parsed == nil || parsed.ClaimHash != cert.ClaimHash {
		t.Errorf("Parsed certificate mismatch")
	}
}

func TestProofRoundtrip_JSONForm(t *testing.T) {
	m := newTestManager(t, nil)
	cert, err := m.CreateProof(sampleRequest())
	if err != nil {
		t.Fatalf("CreateProof failed: %v", err)
	}
	data, err := cert.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	valid, message, _ := VerifyProofStandalone(string(data))
	if !valid {
		t.Errorf("JSON wire form rejected: %s", message)
	}
}

func TestProofRoundtrip_CompactForm(t *testing.T) {
	m := newTestManager(t, nil)
	cert, err := m.CreateProof(sampleRequest())
	if err != nil {
		t.Fatalf("CreateProof failed: %v", err)
	}
	compact, err := cert.ToCompact()
	if err != nil {
		t.Fatalf("ToCompact failed: %v", err)
	}
	if !strings.HasPrefix(compact, "TGP1.") {
		t.Errorf("Compact form missing prefix: %s", compact)
	}

	valid, message, parsed := VerifyProofStandalone(compact)
	if !valid {
		t.Fatalf("Compact wire form rejected: %s", message)
	}
	if parsed.ClaimContent != cert.ClaimContent {
		t.Errorf("Compact roundtrip lost content")
	}
}

func TestVerifyProof_TamperDetection(t *testing.T) {
	m := newTestManager(t, nil)

	mutations := []struct {
		name   string
		mutate func(*Certificate)
	}{
		{"content", func(c *Certificate) { c.ClaimContent = "Water boils at 50C" }},
		{"consensus value", func(c *Certificate) { c.ConsensusValue = 0.99 }},
		{"consensus flag", func(c *Certificate) { c.ConsensusPassed = false }},
		{"validators", func(c *Certificate) { c.Validators = append(c.Validators, "FAKE") }},
		{"timestamp", func(c *Certificate) { c.Timestamp = "2020-01-01T00:00:00Z" }},
		{"claim hash", func(c *Certificate) { c.ClaimHash = "0000000000000000" }},
	}
	for _, tc := range mutations {
		cert, err := m.CreateProof(sampleRequest())
		if err != nil {
			t.Fatalf("CreateProof failed: %v", err)
		}
		tc.mutate(cert)

		valid, message, _ := VerifyProofStandalone(cert)
		if valid {
			t.Errorf("Tampered %s accepted", tc.name)
		}
		if !strings.Contains(message, "tampered") && !strings.Contains(message, "disagrees") {
			t.Errorf("Tampered %s: unexpected message %q", tc.name, message)
		}
	}
}

func TestParseCertificate_InvalidInputs(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"not json at all",
		"TGP1.!!!not-base64!!!",
		12345,
	}
	for _, input := range inputs {
		if _, err := ParseCertificate(input); !errors.Is(err, ErrInvalidCertificate) {
			t.Errorf("ParseCertificate(%v): expected ErrInvalidCertificate, got %v", input, err)
		}
	}
}

func TestVerifyProof_MalformedInput(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"not json at all",
		"TGP1.!!!not-base64!!!",
		`{"claim_hash": "abc"}`,
		12345,
	}
	for _, input := range inputs {
		valid, _, cert := VerifyProofStandalone(input)
		if valid {
			t.Errorf("Malformed input %v accepted", input)
		}
		if cert != nil {
			t.Errorf("Malformed input %v yielded a certificate", input)
		}
	}
}

func TestVerifyProof_MissingSignature(t *testing.T) {
	m := newTestManager(t, nil)
	cert, err := m.CreateProof(sampleRequest())
	if err != nil {
		t.Fatalf("CreateProof failed: %v", err)
	}
	cert.Signature = ""

	valid, message, parsed := VerifyProofStandalone(cert)
	if valid {
		t.Error("Unsigned certificate accepted")
	}
	if parsed != nil {
		t.Error("Structurally incomplete certificate must yield nil")
	}
	if !strings.Contains(message, "signature") {
		t.Errorf("Expected missing-field message naming signature, got %q", message)
	}
}

func TestVerifyProof_WrongFormatVersion(t *testing.T) {
	m := newTestManager(t, nil)
	cert, err := m.CreateProof(sampleRequest())
	if err != nil {
		t.Fatalf("CreateProof failed: %v", err)
	}
	cert.FormatVersion = "9.9"

	valid, message, parsed := VerifyProofStandalone(cert)
	if valid {
		t.Error("Unsupported format version accepted")
	}
	if parsed == nil {
		t.Error("Version mismatch should still return the parsed certificate")
	}
	if !strings.Contains(message, "format version") {
		t.Errorf("Unexpected message %q", message)
	}
}

func TestVerifyProof_ThresholdConsistency(t *testing.T) {
	// A certificate re-signed by its issuer can still be internally
	// inconsistent; the standalone check catches that.
	m := newTestManager(t, nil)
	req := sampleRequest()
	req.ConsensusValue = 0.5
	req.ConsensusPassed = true
	req.Threshold = 0.66

	cert, err := m.CreateProof(req)
	if err != nil {
		t.Fatalf("CreateProof failed: %v", err)
	}
	valid, message, _ := VerifyProofStandalone(cert)
	if valid {
		t.Error("Internally inconsistent certificate accepted")
	}
	if !strings.Contains(message, "threshold") {
		t.Errorf("Unexpected message %q", message)
	}
}
