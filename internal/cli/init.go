package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/repo"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a truth repository",
	Long: `Create the repository layout in the target directory: object storage,
pointer files, configuration, and the keys directory.

Example:
  truthgit init
  truthgit init --path /data/claims --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		if err := r.Init(initForce); err != nil {
			if errors.Is(err, repo.ErrAlreadyExists) {
				return fmt.Errorf("repository already exists at %s (use --force to reinitialize)", r.Root())
			}
			return err
		}
		fmt.Printf("Initialized empty truth repository in %s\n", r.Root())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "reinitialize an existing repository")
	rootCmd.AddCommand(initCmd)
}
