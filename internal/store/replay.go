package store

import (
	"bytes"
	"fmt"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/vault"
)

// ReplayReport summarizes a replay verification run.
type ReplayReport struct {
	// Ops is the number of journaled operations re-applied.
	Ops int

	// Match is true when the replayed state equals the persisted state.
	Match bool

	// Persisted and Replayed hold the two canonical state snapshots.
	// Identical when Match; kept on mismatch for diffing.
	Persisted []byte
	Replayed  []byte
}

// VerifyReplay re-executes the full journal against a fresh in-memory
// registry and compares the result with the mirrored state tables. The
// policy and owner must match the ones the journal was produced under,
// or replay legitimately diverges.
//
// A mismatch is reported, not returned as an error: the caller decides
// whether divergence is fatal.
func (s *Store) VerifyReplay(p policy.Policy, owner fraction.Account) (ReplayReport, error) {
	var report ReplayReport

	persisted := vault.NewRegistry(p, owner)
	if err := s.LoadState(persisted); err != nil {
		return report, fmt.Errorf("verify replay: load state: %w", err)
	}
	persistedSnap, err := persisted.SnapshotCanonical()
	if err != nil {
		return report, fmt.Errorf("verify replay: snapshot persisted: %w", err)
	}

	journal, err := s.ReadJournal()
	if err != nil {
		return report, fmt.Errorf("verify replay: %w", err)
	}

	replayed := vault.NewRegistry(p, owner)
	for _, rec := range journal {
		if err := replayed.ApplyOp(rec.Name, rec.Args); err != nil {
			return report, fmt.Errorf("verify replay: op %d (%s): %w", rec.Seq, rec.Name, err)
		}
	}
	replayedSnap, err := replayed.SnapshotCanonical()
	if err != nil {
		return report, fmt.Errorf("verify replay: snapshot replayed: %w", err)
	}

	report.Ops = len(journal)
	report.Persisted = persistedSnap
	report.Replayed = replayedSnap
	report.Match = bytes.Equal(persistedSnap, replayedSnap)
	return report, nil
}
