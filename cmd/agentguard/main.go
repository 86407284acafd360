// AgentGuard is a runtime cost governor for AI inference API usage.
//
// It attributes a monetary cost to every observed API response, keeps a
// running total against a configured budget, and applies an
// enforcement action the moment the budget is crossed.
//
// Usage:
//
//	# Meter a stream of response payloads (one JSON object per line)
//	some-agent | agentguard watch --config agentguard.yaml
//
//	# Inspect the effective price table
//	agentguard prices list
//
//	# Refresh the price cache from the configured feed
//	agentguard prices refresh
//
//	# Validate a configuration file
//	agentguard validate --config agentguard.yaml
//
//	# Show version information
//	agentguard version
//
// For complete documentation, see: https://github.com/dipampaul17/AgentGuard
package main

func main() {
	Execute()
}
