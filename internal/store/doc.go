// Package store provides SQLite-backed durable storage for the vault
// registry.
//
// The store holds two kinds of data:
//   - Journal: one row per committed public operation, with canonical
//     JSON args and result. The journal is the authoritative history;
//     replaying it against a fresh registry must reproduce the state
//     tables byte for byte.
//   - State tables: the registry's in-memory state mirrored row by row
//     (vaults, shares, votes, balances, escrows, receivers, burns), so a
//     restart loads directly instead of replaying the full journal.
//
// SaveOp writes a journal row and the operation's touched state rows in
// a single transaction, which is what makes every public operation
// all-or-nothing across restarts.
//
// All ordering uses the registry's seq INTEGER (logical clock), never
// wall time. Amounts are stored as their fixed-point decimal TEXT form
// to keep them exact and readable.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
