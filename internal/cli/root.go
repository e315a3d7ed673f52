// Package cli implements the truthgit command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lumensyntax-org/truthgit/internal/repo"
)

// Version is the CLI release version.
const Version = "0.1.0"

var (
	cfgFile  string
	repoPath string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthgit",
	Short: "TruthGit - version control for verifiable claims",
	Long: `TruthGit is a version-control-style ledger for claims about the world.

Claims are content-addressed objects: stage them, verify them through a
panel of independent validators, and commit the consensus outcome to an
append-only history. Verified claims can be exported as signed proof
certificates that anyone can check offline.

TruthGit records what a set of validators agreed on, not what is true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("truthgit v" + Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthgit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&repoPath, "path", repo.DefaultRoot, "repository directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("path", rootCmd.PersistentFlags().Lookup("path"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.truthgit")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TRUTHGIT_*
	viper.SetEnvPrefix("TRUTHGIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// openRepo binds a Repository to the configured path without initializing
// it. Viper resolves the usual precedence: flag, then TRUTHGIT_PATH, then
// config file, then the default.
func openRepo() *repo.Repository {
	return repo.Open(viper.GetString("path"))
}
