package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
)

var logLimit int

// logCmd represents the log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show verification history",
	Long: `Walk the verification chain from HEAD backward through parent links,
newest first, resolving each entry's claim content.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		entries, err := r.Log(logLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No verifications yet")
			return nil
		}
		for _, e := range entries {
			marker := "✗"
			if e.Passed {
				marker = "✓"
			}
			fmt.Printf("%s %s  %.3f  %s\n", marker, hashing.ShortHash(e.Hash, 0), e.Consensus, e.Timestamp.Format("2006-01-02 15:04:05"))
			if e.Content != "" {
				fmt.Printf("    %s [%s, %s]\n", e.Content, e.Domain, e.State)
			}
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "maximum entries to show (0 for all)")
	rootCmd.AddCommand(logCmd)
}
