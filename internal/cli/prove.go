package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/proof"
	"github.com/lumensyntax-org/truthgit/internal/repo"
)

var (
	proveVerification string
	proveCompact      bool
	proveOut          string
)

// proveCmd represents the prove command
var proveCmd = &cobra.Command{
	Use:   "prove <claim-hash>",
	Short: "Issue a signed proof certificate for a verified claim",
	Long: `Build an Ed25519-signed certificate from a committed claim and its
verification. The certificate is self-contained: anyone can check it with
'truthgit verify-proof' without access to this repository.

The signing keypair is generated on first use and kept in the
repository's keys directory.

Example:
  truthgit prove 3f2a9c81
  truthgit prove 3f2a9c81 --compact --out claim.proof`,
	Args: cobra.ExactArgs(1),
	RunE: runProve,
}

// verifyProofCmd represents the verify-proof command
var verifyProofCmd = &cobra.Command{
	Use:   "verify-proof <certificate>",
	Short: "Check a proof certificate offline",
	Long: `Verify a certificate's signature and structure without repository
access. The argument is a file path, a JSON certificate, or a compact
TGP1. token.

Example:
  truthgit verify-proof claim.proof
  truthgit verify-proof 'TGP1.eyJjbGFpbV9oYXNoIjo...'`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyProof,
}

func init() {
	proveCmd.Flags().StringVar(&proveVerification, "verification", "", "verification hash (default: the claim's newest in history)")
	proveCmd.Flags().BoolVar(&proveCompact, "compact", false, "emit the compact single-line form")
	proveCmd.Flags().StringVar(&proveOut, "out", "", "write the certificate to a file instead of stdout")
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(verifyProofCmd)
}

func runProve(cmd *cobra.Command, args []string) error {
	r := openRepo()
	found, err := r.FindByPrefix(args[0])
	if err != nil {
		return err
	}
	cl, ok := found.(*object.Claim)
	if !ok {
		return fmt.Errorf("%s is a %s, proofs cover claims", args[0], found.ObjectType())
	}

	v, err := resolveVerification(r, cl.Hash, proveVerification)
	if err != nil {
		return err
	}

	mgr := proof.NewManager(r.Root(), r)
	if !mgr.KeysExist() {
		if err := mgr.GenerateKeypair(false); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Generated signing keypair in %s/keys\n", r.Root())
		}
	}

	cfg, err := r.Config()
	if err != nil {
		return err
	}
	cert, err := mgr.CreateProof(proof.Request{
		ClaimHash:        cl.Hash,
		ClaimContent:     cl.Content,
		ClaimDomain:      cl.Domain,
		VerificationHash: v.Hash,
		ConsensusValue:   v.Consensus.Value,
		ConsensusPassed:  v.Consensus.Passed,
		Validators:       v.ValidatorNames(),
		Threshold:        cfg.ConsensusThreshold,
	})
	if err != nil {
		return err
	}

	out, err := renderCertificate(cert, proveCompact)
	if err != nil {
		return err
	}

	if proveOut != "" {
		if err := os.WriteFile(proveOut, []byte(out+"\n"), 0o644); err != nil {
			return fmt.Errorf("write certificate: %w", err)
		}
		fmt.Printf("Wrote proof for %s to %s\n", hashing.ShortHash(cl.Hash, 0), proveOut)
		return nil
	}
	fmt.Println(out)
	return nil
}

func runVerifyProof(cmd *cobra.Command, args []string) error {
	input := args[0]
	// A readable file wins over treating the argument as inline content.
	if data, err := os.ReadFile(input); err == nil {
		input = strings.TrimSpace(string(data))
	}

	valid, message, cert := proof.VerifyProofStandalone(input)
	if valid {
		fmt.Printf("✓ %s\n", message)
	} else {
		fmt.Printf("✗ %s\n", message)
	}
	if cert != nil {
		fmt.Printf("  claim:      %s\n", cert.ClaimContent)
		fmt.Printf("  domain:     %s\n", cert.ClaimDomain)
		fmt.Printf("  consensus:  %.3f (passed=%v)\n", cert.ConsensusValue, cert.ConsensusPassed)
		fmt.Printf("  validators: %s\n", strings.Join(cert.Validators, ", "))
		fmt.Printf("  issued:     %s\n", cert.Timestamp)
	}
	if !valid {
		return fmt.Errorf("%w: %s", proof.ErrInvalidCertificate, message)
	}
	return nil
}

// renderCertificate serializes a certificate in the requested wire form.
func renderCertificate(cert *proof.Certificate, compact bool) (string, error) {
	if compact {
		return cert.ToCompact()
	}
	data, err := cert.ToJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resolveVerification picks the verification to certify: the named one, or
// the claim's newest committed verification.
func resolveVerification(r *repo.Repository, claimHash, verificationHash string) (*object.Verification, error) {
	if verificationHash != "" {
		loaded, err := r.ObjectStore().Load(object.TypeVerification, verificationHash)
		if err != nil {
			return nil, fmt.Errorf("verification %s: %w", hashing.ShortHash(verificationHash, 0), err)
		}
		return loaded.(*object.Verification), nil
	}
	history, err := r.History(0)
	if err != nil {
		return nil, err
	}
	for _, v := range history {
		if v.ClaimHash == claimHash {
			return v, nil
		}
	}
	return nil, fmt.Errorf("claim %s has no committed verification: %w", hashing.ShortHash(claimHash, 0), repo.ErrUnknownReference)
}
