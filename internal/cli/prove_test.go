package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lumensyntax-org/truthgit/internal/proof"
)

func sampleCertificate() *proof.Certificate {
	return &proof.Certificate{
		ClaimHash:        "3f2a9c81aa55ee77",
		ClaimContent:     "Water boils at 100C at sea level",
		ClaimDomain:      "physics",
		VerificationHash: "b1c2d3e4f5a6b7c8",
		ConsensusValue:   0.92,
		ConsensusPassed:  true,
		Validators:       []string{"GPT", "OLLAMA:LLAMA3"},
		Timestamp:        "2026-08-23T12:00:00Z",
		IssuerPublicKey:  strings.Repeat("ab", 32),
		Signature:        strings.Repeat("cd", 64),
		FormatVersion:    proof.FormatVersion,
	}
}

func TestRenderCertificate_JSONForm(t *testing.T) {
	out, err := renderCertificate(sampleCertificate(), false)
	if err != nil {
		t.Fatalf("renderCertificate failed: %v", err)
	}

	var decoded proof.Certificate
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("JSON form did not decode: %v", err)
	}
	if decoded.ClaimHash != "3f2a9c81aa55ee77" {
		t.Errorf("JSON form lost claim hash: %q", decoded.ClaimHash)
	}
}

func TestRenderCertificate_CompactForm(t *testing.T) {
	out, err := renderCertificate(sampleCertificate(), true)
	if err != nil {
		t.Fatalf("renderCertificate failed: %v", err)
	}
	if !strings.HasPrefix(out, "TGP1.") {
		t.Errorf("Compact form missing prefix: %s", out)
	}
}
