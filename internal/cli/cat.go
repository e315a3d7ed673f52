package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// catCmd represents the cat command
var catCmd = &cobra.Command{
	Use:   "cat <hash-prefix>",
	Short: "Display a stored object",
	Long: `Resolve a hash prefix across all object types and print the stored
record as JSON.

Example:
  truthgit cat 3f2a9c81`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		o, err := r.FindByPrefix(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(o, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal object: %w", err)
		}
		fmt.Printf("%s %s\n%s\n", o.ObjectType(), o.ObjectHash(), data)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
