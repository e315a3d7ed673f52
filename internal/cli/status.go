package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository state",
	Long: `Display the staging area, HEAD, the consensus pointer (the most recent
passing verification, which may trail HEAD), perspectives, and object
counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		st, err := r.Status()
		if err != nil {
			return err
		}

		fmt.Printf("Repository: %s\n", r.Root())
		if st.Head == "" {
			fmt.Println("HEAD:       (no verifications yet)")
		} else {
			fmt.Printf("HEAD:       %s\n", hashing.ShortHash(st.Head, 0))
		}
		if st.Consensus != "" {
			fmt.Printf("Consensus:  %s\n", hashing.ShortHash(st.Consensus, 0))
		}

		if len(st.Staged) == 0 {
			fmt.Println("\nNothing staged")
		} else {
			fmt.Printf("\nStaged (%d):\n", len(st.Staged))
			for _, entry := range st.Staged {
				line := fmt.Sprintf("  %s  %s", hashing.ShortHash(entry.Hash, 0), entry.Type)
				if loaded, err := r.ObjectStore().Load(object.TypeClaim, entry.Hash); err == nil {
					line += "  " + loaded.(*object.Claim).Content
				}
				fmt.Println(line)
			}
		}

		if len(st.Perspectives) > 0 {
			fmt.Printf("\nPerspectives:\n")
			names := make([]string, 0, len(st.Perspectives))
			for name := range st.Perspectives {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-20s %s\n", name, hashing.ShortHash(st.Perspectives[name], 0))
			}
		}

		if verbose {
			counts, err := r.CountObjects()
			if err != nil {
				return err
			}
			fmt.Printf("\nObjects:\n")
			for _, t := range object.AllTypes() {
				fmt.Printf("  %-13s %d\n", t, counts[t])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
