package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/store"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-apply the journal and verify the persisted state",
		Long: `Re-apply every journaled operation against a fresh in-memory registry
and compare its canonical snapshot to the persisted state, byte for byte.
A mismatch means the state tables and the journal have diverged, or the
database was produced under a different policy.

Exit codes:
  0 - replay reproduces the persisted state
  1 - snapshots diverge
  2 - command error (database not found, corrupt journal, etc.)

Examples:
  fractional replay --db ./fractional.db
  fractional replay --db ./fractional.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	pol := policy.Default()
	if opts.PolicyDir != "" {
		loaded, err := policy.Load(opts.PolicyDir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load policy", err)
		}
		pol = loaded
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	f := newFormatter(opts, cmd)
	report, err := st.VerifyReplay(pol, DefaultOwner)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	f.VerboseLog("replayed %d op(s)", report.Ops)

	if !report.Match {
		if werr := f.Error("E_REPLAY", fmt.Sprintf("replay diverged after %d op(s)", report.Ops)); werr != nil {
			return werr
		}
		return NewExitError(ExitFailure, "replay diverged from persisted state")
	}

	return f.Payload(map[string]any{
		"ops":   report.Ops,
		"match": true,
	})
}
