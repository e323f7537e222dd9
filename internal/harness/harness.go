package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/vault"
)

// ScenarioOwner is the protocol owner account scenarios run under.
const ScenarioOwner = fraction.Account("fractional")

// Run executes a scenario against a fresh in-memory registry and
// returns the result.
//
// Execution flow:
//  1. Build the governing policy (defaults plus scenario overrides)
//  2. Execute setup steps; any failure aborts the scenario
//  3. Execute flow steps, checking each against its expect clause
//  4. Evaluate assertions over the final state
//  5. Re-apply the journal to a second fresh registry and require the
//     canonical snapshots to match byte for byte
func Run(scenario *Scenario) (*Result, error) {
	pol := buildPolicy(scenario.Policy)
	reg := newScenarioRegistry(pol)

	result := NewResult()
	for i, step := range scenario.Setup {
		if err := applyStep(reg, step, result); err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Op, err)
		}
	}

	for i, step := range scenario.Flow {
		err := applyStep(reg, step, result)
		want := ""
		if step.Expect != nil {
			want = step.Expect.Error
		}
		got := string(fraction.CodeOf(err))
		if err != nil && got == "" {
			// Not an operation error: the scenario itself is broken.
			return nil, fmt.Errorf("flow step %d (%s): %w", i, step.Op, err)
		}
		if got != want {
			if want == "" {
				result.AddError(fmt.Sprintf("flow step %d (%s): unexpected error %s", i, step.Op, got))
			} else {
				result.AddError(fmt.Sprintf("flow step %d (%s): expected error %s, got %q", i, step.Op, want, got))
			}
		}
	}

	snapshot, err := reg.SnapshotCanonical()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	result.Snapshot = snapshot

	EvaluateAssertions(result, scenario.Assertions, reg)

	if err := verifyReplay(reg, pol, snapshot, result); err != nil {
		return nil, err
	}
	return result, nil
}

func newScenarioRegistry(pol policy.Policy) *vault.Registry {
	return vault.NewRegistry(pol, ScenarioOwner,
		vault.WithTokenGenerator(vault.NewFixedGenerator("op")),
		vault.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// applyStep executes one operation and appends its trace event. An
// operation error is recorded in the trace and returned; infrastructure
// errors are returned without a trace entry.
func applyStep(reg *vault.Registry, step Step, result *Result) error {
	before := len(reg.Journal())
	err := reg.ApplyOp(step.Op, step.Args)
	if err != nil {
		if code := fraction.CodeOf(err); code != "" {
			result.Trace = append(result.Trace, TraceEvent{
				Op:    step.Op,
				Args:  step.Args,
				Error: string(code),
			})
		}
		return err
	}

	journal := reg.Journal()
	if len(journal) != before+1 {
		return fmt.Errorf("op %s committed %d journal records, want 1", step.Op, len(journal)-before)
	}
	rec := journal[len(journal)-1]
	result.Trace = append(result.Trace, TraceEvent{
		Op:     rec.Name,
		Args:   rec.Args,
		Seq:    rec.Seq,
		Result: rec.Result,
	})
	return nil
}

// verifyReplay re-applies the journal to a fresh registry and compares
// snapshots. Divergence means an operation is not a pure function of its
// recorded arguments, which no assertion would otherwise catch.
func verifyReplay(reg *vault.Registry, pol policy.Policy, snapshot []byte, result *Result) error {
	fresh := newScenarioRegistry(pol)
	for _, rec := range reg.Journal() {
		if err := fresh.ApplyOp(rec.Name, rec.Args); err != nil {
			return fmt.Errorf("replay op %d (%s): %w", rec.Seq, rec.Name, err)
		}
	}
	replayed, err := fresh.SnapshotCanonical()
	if err != nil {
		return fmt.Errorf("replay snapshot: %w", err)
	}
	if string(replayed) != string(snapshot) {
		result.AddError("replay diverged from executed state")
	}
	return nil
}

func buildPolicy(o *PolicyOverrides) policy.Policy {
	pol := policy.Default()
	if o == nil {
		return pol
	}
	if o.AuctionLength != nil {
		pol.AuctionLength = *o.AuctionLength
	}
	if o.MinRaiseBips != nil {
		pol.MinRaiseBips = *o.MinRaiseBips
	}
	if o.ExtensionWindow != nil {
		pol.ExtensionWindow = *o.ExtensionWindow
	}
	if o.MaxFeeBips != nil {
		pol.MaxFeeBips = *o.MaxFeeBips
	}
	if o.MaxSupply != nil {
		pol.MaxSupply = *o.MaxSupply
	}
	if o.CashBatchLimit != nil {
		pol.CashBatchLimit = *o.CashBatchLimit
	}
	return pol
}
