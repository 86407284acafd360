package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dipampaul17/AgentGuard/pkg/cli"
	"github.com/dipampaul17/AgentGuard/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file, apply environment overrides, and report
every invalid field.

Examples:
  agentguard validate --config agentguard.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Printf("✓ configuration valid: limit $%.2f, mode %s\n", cfg.Limit, cfg.Mode)
	return nil
}
