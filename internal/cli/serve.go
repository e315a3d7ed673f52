package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/api"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

var (
	serveAddr  string
	serveLocal bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the repository over HTTP",
	Long: `Start the HTTP API: status, search, claim listing, verification, and
proof issuance. The server shuts down gracefully on SIGINT/SIGTERM.

Example:
  truthgit serve --addr :8421
  truthgit serve --local`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRepo()
		if !r.IsInitialized() {
			return fmt.Errorf("no repository at %s; run 'truthgit init' first", r.Root())
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := api.NewServer(serveAddr, Version, r, validator.DefaultPolicy(serveLocal))
		fmt.Printf("Serving %s on %s\n", r.Root(), serveAddr)
		if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8421", "listen address")
	serveCmd.Flags().BoolVar(&serveLocal, "local", false, "restrict verification to local validators")
	rootCmd.AddCommand(serveCmd)
}
