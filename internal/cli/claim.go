package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
)

var (
	claimDomain     string
	claimCategory   string
	claimConfidence float64
)

// claimCmd represents the claim command
var claimCmd = &cobra.Command{
	Use:   "claim <content>",
	Short: "Stage a claim for verification",
	Long: `Store a claim as a content-addressed object and add it to the staging
area. Claiming identical content again returns the same hash and leaves a
single stored record.

Example:
  truthgit claim "Water boils at 100C at sea level" --domain physics
  truthgit claim "The Eiffel Tower is in Paris" --category factual`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		cl, err := r.Claim(args[0], claimDomain, claimCategory, claimConfidence)
		if err != nil {
			return err
		}
		fmt.Printf("Staged claim %s\n", hashing.ShortHash(cl.Hash, 0))
		if verbose {
			fmt.Printf("  hash:     %s\n", cl.Hash)
			fmt.Printf("  domain:   %s\n", cl.Domain)
			fmt.Printf("  category: %s\n", cl.Category)
			fmt.Printf("  state:    %s\n", cl.State)
		}
		return nil
	},
}

func init() {
	claimCmd.Flags().StringVar(&claimDomain, "domain", "general", "claim domain")
	claimCmd.Flags().StringVar(&claimCategory, "category", string(object.CategoryFactual), "claim category (factual, definitional, opinion)")
	claimCmd.Flags().Float64Var(&claimConfidence, "confidence", 0.5, "claimant's prior confidence (0-1)")
	rootCmd.AddCommand(claimCmd)
}
