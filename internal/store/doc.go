// Package store provides the SQLite-backed run ledger for fmuharness.
//
// Every harness invocation can be recorded as one row in the runs table:
// scenario, engine, FMU file, simulated time span, sample count, assertion
// tallies and any error text. The invocation parameters are kept as a
// canonical JSON snapshot so two runs with identical inputs store
// byte-identical params.
//
// # Ordering
//
// Listing is deterministic: ORDER BY started_at DESC, id ASC COLLATE BINARY.
// Timestamps are stored as RFC 3339 UTC text with nanoseconds, which sorts
// lexically in time order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for a concurrent harness holding the write lock
//
// The ledger is optional. The CLI opens it only when --db is set.
package store
