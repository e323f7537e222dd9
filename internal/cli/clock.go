package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/vault"
)

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	var delta uint64

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Advance the logical clock",
		Long: `Advance the registry's logical clock. Auction expiry and the
anti-sniping window are measured in ticks; time never moves on its own.

Example:
  fractional tick --delta 172800`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				_, err := r.Tick(delta)
				return err
			})
		},
	}

	cmd.Flags().Uint64Var(&delta, "delta", 1, "ticks to advance")

	return cmd
}
