package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
)

var promoteType string

// promoteCmd represents the promote command
var promoteCmd = &cobra.Command{
	Use:   "promote <claim-hash>",
	Short: "Promote a verified claim to an axiom",
	Long: `Create an axiom record from a VERIFIED claim. Axioms are foundational
truths exempt from re-verification. Promotion is always explicit.

Example:
  truthgit promote 3f2a9c81... --type empirical`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at := object.AxiomType(promoteType)
		switch at {
		case object.AxiomEmpirical, object.AxiomDefinitional, object.AxiomLogical:
		default:
			return fmt.Errorf("unknown axiom type %q (want empirical, definitional, or logical)", promoteType)
		}

		r := openRepo()
		ax, err := r.Promote(args[0], at)
		if err != nil {
			return err
		}
		fmt.Printf("Promoted to axiom %s (%s)\n", hashing.ShortHash(ax.Hash, 0), ax.AxiomType)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteType, "type", string(object.AxiomEmpirical), "axiom type (empirical, definitional, logical)")
	rootCmd.AddCommand(promoteCmd)
}
