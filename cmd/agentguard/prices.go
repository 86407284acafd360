package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dipampaul17/AgentGuard/pkg/cli"
	"github.com/dipampaul17/AgentGuard/pkg/pricing"
	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

var pricesFlags struct {
	output string
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Inspect and refresh the model price table",
}

var pricesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective price table",
	Long: `Print every model entry in the effective price table: the bundled
defaults merged with any cached snapshot.

Examples:
  agentguard prices list
  agentguard prices list --output json
  agentguard prices list --output csv > prices.csv`,
	RunE: runPricesList,
}

var pricesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the price cache from the configured feed",
	RunE:  runPricesRefresh,
}

func init() {
	rootCmd.AddCommand(pricesCmd)
	pricesCmd.AddCommand(pricesListCmd)
	pricesCmd.AddCommand(pricesRefreshCmd)

	pricesListCmd.Flags().StringVarP(&pricesFlags.output, "output", "o", "text", "output format (text, json, csv)")
}

// priceListing renders a price table snapshot for CLI output.
type priceListing struct {
	Entries []pricing.Entry `json:"entries"`
}

func (p priceListing) Header() []string {
	return []string{"model", "input_per_1k", "output_per_1k"}
}

func (p priceListing) Rows() [][]string {
	rows := make([][]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		rows = append(rows, []string{
			e.Model,
			fmt.Sprintf("%g", e.InputPer1K),
			fmt.Sprintf("%g", e.OutputPer1K),
		})
	}
	return rows
}

func runPricesList(cmd *cobra.Command, args []string) error {
	table := pricing.NewTable(nil)

	// Fold in the cached snapshot when the config names one.
	if cfg, err := loadConfig(); err == nil && (cfg.Prices.URL != "" || cfg.Prices.CachePath != "") {
		refresher := pricing.NewRefresher(table, pricing.RefresherConfig{
			URL:       cfg.Prices.URL,
			CachePath: cfg.Prices.CachePath,
			Logger:    logging.Nop(),
		})
		refresher.Refresh(cmd.Context())
	}

	snapshot := table.Snapshot()
	listing := priceListing{Entries: make([]pricing.Entry, 0, len(snapshot))}
	for _, entry := range snapshot {
		listing.Entries = append(listing.Entries, entry)
	}
	sort.Slice(listing.Entries, func(i, j int) bool {
		return listing.Entries[i].Model < listing.Entries[j].Model
	})

	formatter := cli.NewFormatter(cli.OutputFormat(pricesFlags.output))
	return formatter.FormatTo(os.Stdout, listing)
}

func runPricesRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if cfg.Prices.URL == "" {
		return cli.NewConfigError("prices.url", "no price feed configured")
	}

	logger, err := logging.New(logging.Config{
		Level:  "info",
		Format: cfg.Logging.Format,
		Redact: cfg.RedactLogs(),
		Writer: os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	table := pricing.NewTable(nil)
	refresher := pricing.NewRefresher(table, pricing.RefresherConfig{
		URL:       cfg.Prices.URL,
		CachePath: cfg.Prices.CachePath,
		Logger:    logger,
	})
	refresher.Refresh(cmd.Context())

	fmt.Printf("price table holds %d entries\n", table.Len())
	return nil
}
