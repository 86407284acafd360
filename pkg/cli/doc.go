/*
Package cli provides command-line interface utilities for the
agentguard command.

Output Formatting:

Command results render as text, JSON, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output requires the data to implement cli.Tabular so rows and
headers are well-defined.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext()
	defer stop()
*/
package cli
