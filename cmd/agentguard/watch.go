package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dipampaul17/AgentGuard/pkg/cli"
	"github.com/dipampaul17/AgentGuard/pkg/enforcement"
	"github.com/dipampaul17/AgentGuard/pkg/guard"
	"github.com/dipampaul17/AgentGuard/pkg/pricing"
	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
	"github.com/dipampaul17/AgentGuard/pkg/tokens"
)

var watchFlags struct {
	model string
	url   string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Meter a stream of API response payloads from stdin",
	Long: `Read response payloads from stdin, one JSON object per line, attribute
a cost to each, and enforce the configured budget.

Each line is treated as one observed API response. The running total is
printed after every attributed call unless silent mode is on.

Examples:
  # Meter an agent's responses against a $25 budget
  some-agent | agentguard watch --config agentguard.yaml

  # Supply a model hint for payloads without a model field
  tail -f responses.jsonl | agentguard watch --model gpt-4

  # Attribute against a provider URL pattern
  agentguard watch --url https://api.anthropic.com/v1/messages < calls.jsonl`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.model, "model", "", "model hint for payloads without a model field")
	watchCmd.Flags().StringVar(&watchFlags.url, "url", "", "source URL used for provider-based model resolution")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	logLevel := cfg.Logging.Level
	if verbose {
		logLevel = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:  logLevel,
		Format: cfg.Logging.Format,
		Redact: cfg.RedactLogs(),
		Writer: os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}

	g, err := guard.New(guard.Config{
		Limit:           cfg.Limit,
		Mode:            cfg.Mode,
		Webhook:         cfg.Webhook,
		Silent:          cfg.Silent,
		SharedLedgerURL: cfg.SharedLedgerURL,
		Privacy:         cfg.Privacy,
		Disabled:        !cfg.IsEnabled(),
		JournalPath:     cfg.JournalPath,
		PriceURL:        cfg.Prices.URL,
		PriceCachePath:  cfg.Prices.CachePath,
		Tokenizer:       tokens.NewCharCounter(),
		Instance:        cfg.Instance,
		Logger:          logger,
	})
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer g.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg.Metrics.ListenAddress, cfg.Metrics.Path, logger)
	}
	if cfg.Prices.OverridesFile != "" {
		watcher, err := pricing.WatchOverrides(g.PriceTable(), cfg.Prices.OverridesFile, logger)
		if err != nil {
			logger.Warn("price override watching unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}
	if cfg.Prices.AutoRefresh {
		stopRefresh := g.StartPriceAutoRefresh()
		defer stopRefresh()
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		payload := make(json.RawMessage, len(line))
		copy(payload, line)

		call, err := g.Observe(ctx, payload, watchFlags.model, watchFlags.url)
		if err != nil {
			var trip *enforcement.BudgetExceededError
			if errors.As(err, &trip) {
				printSummary(ctx, g)
				return cli.NewCommandError("watch", trip)
			}
			return cli.NewCommandError("watch", err)
		}
		if call != nil && !cfg.Silent {
			fmt.Printf("$%.6f  %-24s  in=%d out=%d  total=$%.6f\n",
				call.Cost, call.Model, call.InputUnits, call.OutputUnits, g.GetCost(ctx))
		}
	}
	if err := scanner.Err(); err != nil {
		return cli.NewCommandError("watch", err)
	}

	printSummary(ctx, g)
	return nil
}

func printSummary(ctx context.Context, g *guard.Guard) {
	total := g.GetCost(ctx)
	limit := g.GetLimit()
	fmt.Fprintf(os.Stderr, "\nspent $%.6f of $%.2f (%d calls)\n",
		total, limit, len(g.GetLogs()))
}

// startMetricsServer exposes Prometheus metrics until ctx is canceled.
func startMetricsServer(ctx context.Context, addr, path string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", "address", addr, "path", path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
