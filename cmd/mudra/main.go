// Package main provides the CLI entrypoint for mudra.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
)

var configPath string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mudra",
		Short:         "Hand-gesture motor control",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file (TOML or YAML)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newRelayCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newDriversCmd())

	return rootCmd
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
