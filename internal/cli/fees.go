package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewSetFeeCommand creates the set-fee command.
func NewSetFeeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		caller string
		bips   uint64
	)

	cmd := &cobra.Command{
		Use:   "set-fee",
		Short: "Set the protocol fee rate",
		Long: `Set the protocol fee carved from each winning bid, in basis points.
Owner only, and capped by policy.

Example:
  fractional set-fee --caller fractional --bips 250`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.SetFeeRate(fraction.Account(caller), bips)
			})
		},
	}

	cmd.Flags().StringVar(&caller, "caller", string(DefaultOwner), "calling account")
	cmd.Flags().Uint64Var(&bips, "bips", 0, "fee rate in basis points (required)")
	_ = cmd.MarkFlagRequired("bips")

	return cmd
}

// NewSetFeeReceiverCommand creates the set-fee-receiver command.
func NewSetFeeReceiverCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		caller   string
		id       uint64
		receiver string
		path     string
	)

	cmd := &cobra.Command{
		Use:   "set-fee-receiver",
		Short: "Point a vault's fee payments at a receiver descriptor",
		Long: `Replace a vault's fee receiver descriptor (account and path). Owner
only. Auction finalization refuses to run while the descriptor is
unreachable, so this is also the repair path after a bad override.

Example:
  fractional set-fee-receiver --vault 1 --receiver treasury --path /receivers/main`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.SetFeeReceiver(fraction.Account(caller), fraction.VaultID(id),
					fraction.Account(receiver), path)
			})
		},
	}

	cmd.Flags().StringVar(&caller, "caller", string(DefaultOwner), "calling account")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().StringVar(&receiver, "receiver", "", "fee receiving account (required)")
	cmd.Flags().StringVar(&path, "path", "", "receiver path (required)")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("receiver")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
