package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/policy"
	"github.com/fracdao/fractional/internal/store"
	"github.com/fracdao/fractional/internal/vault"
)

// session is one CLI invocation's view of the system: the policy in
// force, the open store, and a registry rebuilt from the persisted state.
// Every command opens a session, applies at most one operation, and
// closes it; durability comes from the store transaction, not from the
// process staying alive.
type session struct {
	store *store.Store
	reg   *vault.Registry
	pol   policy.Policy
}

func openSession(opts *RootOptions) (*session, error) {
	pol := policy.Default()
	if opts.PolicyDir != "" {
		loaded, err := policy.Load(opts.PolicyDir)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load policy", err)
		}
		pol = loaded
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	reg := vault.NewRegistry(pol, DefaultOwner,
		vault.WithPersister(st),
		vault.WithLogger(logger))
	if err := st.LoadState(reg); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load state", err)
	}
	return &session{store: st, reg: reg, pol: pol}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// runOp opens a session, applies one registry operation, and renders its
// journal record. A refused operation prints its failure code and exits
// with ExitFailure; infrastructure errors exit with ExitCommandError.
func runOp(opts *RootOptions, cmd *cobra.Command, apply func(r *vault.Registry) error) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	f := newFormatter(opts, cmd)
	if err := apply(s.reg); err != nil {
		code := fraction.CodeOf(err)
		if code == "" {
			return WrapExitError(ExitCommandError, "operation failed", err)
		}
		if werr := f.Error(string(code), err.Error()); werr != nil {
			return werr
		}
		return NewExitError(ExitFailure, err.Error())
	}

	journal := s.reg.Journal()
	return f.OpResult(journal[len(journal)-1])
}
