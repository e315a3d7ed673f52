package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/consensus"
	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

var (
	verifyLocal   bool
	verifyHuman   bool
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify staged claims through the validator panel",
	Long: `Discover available validators, collect their judgments on every staged
claim, compute consensus, and commit the results to history. Each staged
claim gets its own verification record; HEAD advances per claim.

Validators are probed in order: local Ollama models first, then cloud
APIs when keys are configured. At least two must respond.

Example:
  truthgit verify
  truthgit verify --local
  truthgit verify --human`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyLocal, "local", false, "use local validators only (no cloud APIs)")
	verifyCmd.Flags().BoolVar(&verifyHuman, "human", false, "add an interactive human validator")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 5*time.Minute, "overall verification timeout")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	r := openRepo()
	staged, err := r.GetStaged()
	if err != nil {
		return err
	}
	if len(staged) == 0 {
		fmt.Println("Nothing staged; use 'truthgit claim' first")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	policy := validator.DefaultPolicy(verifyLocal)
	validators, err := validator.Discover(ctx, policy, minPanel())
	if err != nil {
		return fmt.Errorf("validator discovery: %w", err)
	}
	if verifyHuman {
		validators = append(validators, validator.NewHumanValidator(os.Stdin, os.Stdout))
	}
	if verbose {
		for _, v := range validators {
			fmt.Fprintf(os.Stderr, "Using validator: %s\n", v.Name())
		}
	}

	// The panel judges each staged claim separately; every claim gets its
	// own verification record.
	for _, entry := range staged {
		loaded, err := r.ObjectStore().Load(object.TypeClaim, entry.Hash)
		if err != nil {
			return err
		}
		cl := loaded.(*object.Claim)
		fmt.Printf("Verifying %s: %s\n", hashing.ShortHash(cl.Hash, 0), cl.Content)

		results, reduced := validator.Collect(ctx, validators, cl.Content, cl.Domain, validator.Options{})
		for _, res := range results {
			if res.Success() {
				fmt.Printf("  %-16s %.2f  %s\n", res.ValidatorName, res.Confidence, res.Reasoning)
			} else {
				fmt.Printf("  %-16s ERROR: %s\n", res.ValidatorName, res.Error)
			}
		}

		v, err := r.VerifyClaim(cl.Hash, reduced, "cli")
		if err != nil {
			return err
		}
		fmt.Printf("  consensus: %.3f (%s) -> %s\n", v.Consensus.Value, v.Consensus.Type, stateWord(v.Consensus.Passed))
		fmt.Printf("  committed %s\n", hashing.ShortHash(v.Hash, 0))
	}
	return nil
}

func minPanel() int {
	min := consensus.Quorum
	if verifyHuman {
		// A human validator counts toward quorum, so discovery may find
		// one fewer.
		min--
	}
	if min < 1 {
		min = 1
	}
	return min
}

func stateWord(passed bool) string {
	if passed {
		return "VERIFIED"
	}
	return "REJECTED"
}
