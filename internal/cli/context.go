package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextDescription string
	contextValidators  []string
	contextThreshold   float64
)

// contextCmd represents the context command
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage domain contexts",
	Long: `Domain contexts carry per-domain metadata: a description, preferred
validators, and an optional consensus threshold override used when
verifying claims in that domain.`,
}

var contextSetCmd = &cobra.Command{
	Use:   "set <domain>",
	Short: "Create or replace a domain context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		cx, err := r.SaveContext(args[0], contextDescription, contextValidators, contextThreshold)
		if err != nil {
			return err
		}
		fmt.Printf("Saved context for domain %q", cx.Domain)
		if cx.Threshold > 0 {
			fmt.Printf(" (threshold %.2f)", cx.Threshold)
		}
		fmt.Println()
		return nil
	},
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored domain contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		contexts, err := r.ListContexts()
		if err != nil {
			return err
		}
		if len(contexts) == 0 {
			fmt.Println("No domain contexts")
			return nil
		}
		for _, cx := range contexts {
			line := fmt.Sprintf("  %-15s", cx.Domain)
			if cx.Threshold > 0 {
				line += fmt.Sprintf(" threshold=%.2f", cx.Threshold)
			}
			if cx.Description != "" {
				line += "  " + cx.Description
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	contextSetCmd.Flags().StringVar(&contextDescription, "description", "", "human-readable domain description")
	contextSetCmd.Flags().StringSliceVar(&contextValidators, "validators", nil, "preferred validator names")
	contextSetCmd.Flags().Float64Var(&contextThreshold, "threshold", 0, "consensus threshold override (0 keeps the repository default)")
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextListCmd)
	rootCmd.AddCommand(contextCmd)
}
