package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/validator"
)

var validatorsLocal bool

// validatorsCmd represents the validators command
var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List validator backends and their availability",
	Long: `Probe every candidate in the discovery policy and report which backends
are ready to serve verification requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		policy := validator.DefaultPolicy(validatorsLocal)
		available := 0
		for _, cand := range policy {
			v, err := cand.Build()
			if err != nil {
				return err
			}
			probeCtx, probeCancel := context.WithTimeout(ctx, 3*time.Second)
			ok := v.IsAvailable(probeCtx)
			probeCancel()

			mark := "unavailable"
			if ok {
				mark = "available"
				available++
			}
			fmt.Printf("  %-20s %-10s %s\n", v.Name(), cand.Backend, mark)
		}
		fmt.Printf("\n%d of %d validators available\n", available, len(policy))
		return nil
	},
}

func init() {
	validatorsCmd.Flags().BoolVar(&validatorsLocal, "local", false, "probe local backends only")
	rootCmd.AddCommand(validatorsCmd)
}
