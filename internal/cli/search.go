package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
)

var (
	searchDomain string
	searchLimit  int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored claims",
	Long: `Case-insensitive substring search over claim content, optionally
filtered by domain, newest first.

Example:
  truthgit search "boiling point" --domain physics`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		results, err := r.Search(args[0], searchDomain, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching claims")
			return nil
		}
		for _, res := range results {
			fmt.Printf("%s  [%s]  %s\n", hashing.ShortHash(res.Hash, 0), res.State, res.Content)
			if verbose {
				fmt.Printf("    domain=%s consensus=%.3f passed=%v %s\n", res.Domain, res.Consensus, res.Passed, res.Timestamp.Format("2006-01-02 15:04:05"))
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchDomain, "domain", "", "restrict to one domain")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	rootCmd.AddCommand(searchCmd)
}
