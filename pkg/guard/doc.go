// Package guard assembles the cost governor: attribution, ledger, and
// enforcement behind one instance-scoped API.
//
// A Guard owns a price table, a cost attributor, a budget ledger
// (local or Redis-shared), and an enforcement controller. The observer
// layer feeds it raw response payloads via Observe; everything else is
// internal plumbing.
//
// # Lifecycle
//
//	g, err := guard.New(guard.Config{
//	    Limit:   25.00,
//	    Mode:    "soft",
//	    Webhook: "https://hooks.example.com/budget",
//	})
//	if err != nil {
//	    return err
//	}
//	defer g.Close()
//
//	call, err := g.Observe(ctx, payload, "", "https://api.openai.com/v1/chat/completions")
//	if err != nil {
//	    var trip *enforcement.BudgetExceededError
//	    if errors.As(err, &trip) {
//	        // budget crossed in soft mode
//	    }
//	}
//
// # Isolation
//
// Guards hold no shared package state apart from Prometheus collectors,
// which are registered once and labeled per instance. Multiple guards
// with independent limits coexist in one process.
package guard
