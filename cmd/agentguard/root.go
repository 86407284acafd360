package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dipampaul17/AgentGuard/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "agentguard",
	Short: "AgentGuard - runtime cost governor for AI inference APIs",
	Long: `AgentGuard watches AI inference API responses, attributes a monetary
cost to each one, and stops runaway spend the moment a configured
budget is crossed.

It provides:
  - Per-call cost attribution across response shapes (usage blocks,
    streaming deltas, content arrays, multimodal payloads)
  - A running budget ledger, local or shared across processes via Redis
  - Soft-error, hard-exit, and warn-only enforcement modes
  - One-shot webhook notifications on budget trips

For more information, visit: https://github.com/dipampaul17/AgentGuard`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "agentguard.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the effective configuration: the config file plus
// environment overrides, or environment variables alone when the
// default config file is absent.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
		return config.FromEnv()
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}
