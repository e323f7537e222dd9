// Package harness provides a conformance testing framework for the vault
// registry.
//
// Scenarios are YAML files describing an operation flow against a fresh
// registry: setup operations that must succeed, flow operations with
// expected outcomes (success or a specific error code), and assertions
// over the final state. Every scenario also gets a free determinism
// check: the registry's journal is re-applied to a second fresh registry
// and the two canonical state snapshots must be byte-identical.
//
// Golden trace files (testdata/golden) pin the exact operation trace a
// scenario produces. Traces are canonical JSON, so a golden mismatch
// means behavior actually changed, not formatting.
package harness
