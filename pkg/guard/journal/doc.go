// Package journal provides durable on-disk persistence for attributed
// call records using SQLite.
//
// The journal is an optional sidecar to the in-memory call log. When
// enabled, every attributed call is appended to a local SQLite database
// so spend history survives process restarts and can be inspected after
// a hard-exit termination.
//
// # Durability
//
// The journal opens SQLite in WAL mode with a busy timeout, runs
// periodic passive checkpoints, and truncates the WAL on close. Appends
// go through a prepared statement; SQLite's single-writer model is
// respected via a connection pool capped at one connection.
//
// # Usage
//
//	j, err := journal.Open(journal.Config{Path: "agentguard.db"})
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	if err := j.Append(ctx, call); err != nil {
//	    log.Warn("journal append failed", "error", err)
//	}
package journal
