package main

import (
	"fmt"
	"os"

	"github.com/crflynn/treelite/bootstrap"
	"github.com/crflynn/treelite/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treelite",
	Short: "Deep-copy ownership handles, feature entries and value formatting",
	Long: `treelite exercises the deep-copy ownership core.

It formats float arrays the way model code generators print them, searches
sorted thresholds, and verifies that every registered variant honours the
clone contract under copy, move and release.

Examples:
  treelite format 0.5 1 2.25        # Print a wrapped C-style array
  treelite search -t 1,2,3 2 2.5    # Look up and quantize values
  treelite verify --iterations 1000 # Check ownership accounting
  treelite variants                 # List registered variants`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "treelite.yaml", "config file path")
}

// loadConfig reads the config file when it exists, otherwise TREELITE_* variables.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newApp wires the application with logs on stderr and results on stdout.
func newApp(cmd *cobra.Command, cfg *config.Config) (*bootstrap.App, error) {
	return bootstrap.NewWithOptions(cfg, bootstrap.Options{
		LogOutput:     cmd.ErrOrStderr(),
		MetricsOutput: cmd.OutOrStdout(),
	})
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
