package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
)

// perspectiveCmd represents the perspective command
var perspectiveCmd = &cobra.Command{
	Use:     "perspective",
	Aliases: []string{"persp"},
	Short:   "Manage named verification pointers",
	Long: `Perspectives are independent named pointers into verification history,
like lightweight branches. There are no merge semantics; each perspective
simply marks a verification of interest.`,
}

var perspectiveSetCmd = &cobra.Command{
	Use:   "set <name> <verification-hash>",
	Short: "Point a perspective at a verification",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		if err := r.SetPerspective(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Perspective %q -> %s\n", args[0], hashing.ShortHash(args[1], 0))
		return nil
	},
}

var perspectiveDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a perspective",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		if err := r.DeletePerspective(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted perspective %q\n", args[0])
		return nil
	},
}

var perspectiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List perspectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		st, err := r.Status()
		if err != nil {
			return err
		}
		if len(st.Perspectives) == 0 {
			fmt.Println("No perspectives")
			return nil
		}
		names := make([]string, 0, len(st.Perspectives))
		for name := range st.Perspectives {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-20s %s\n", name, hashing.ShortHash(st.Perspectives[name], 0))
		}
		return nil
	},
}

func init() {
	perspectiveCmd.AddCommand(perspectiveSetCmd)
	perspectiveCmd.AddCommand(perspectiveDeleteCmd)
	perspectiveCmd.AddCommand(perspectiveListCmd)
	rootCmd.AddCommand(perspectiveCmd)
}
