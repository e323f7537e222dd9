package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewStartCommand creates the start command.
func NewStartCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		bidder string
		id     uint64
		amount string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Open an auction with a first bid",
		Long: `Open the vault's auction with an opening bid. Requires a voting quorum
over the outstanding supply and a bid at or above the weighted reserve.
The bid is escrowed immediately.

Example:
  fractional start --bidder alice --vault 1 --amount 100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmountFlag("amount", amount)
			if err != nil {
				return err
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.Start(fraction.Account(bidder), fraction.VaultID(id), amt)
			})
		},
	}

	cmd.Flags().StringVar(&bidder, "bidder", "", "bidding account (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "opening bid (required)")
	_ = cmd.MarkFlagRequired("bidder")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// NewBidCommand creates the bid command.
func NewBidCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		bidder string
		id     uint64
		amount string
	)

	cmd := &cobra.Command{
		Use:   "bid",
		Short: "Outbid the standing high bid",
		Long: `Replace the standing high bid. The amount must clear the minimum raise
over the current price; the outbid bidder is refunded from escrow in the
same operation. A bid inside the anti-sniping window extends expiry.

Example:
  fractional bid --bidder carol --vault 1 --amount 120`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmountFlag("amount", amount)
			if err != nil {
				return err
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.Bid(fraction.Account(bidder), fraction.VaultID(id), amt)
			})
		},
	}

	cmd.Flags().StringVar(&bidder, "bidder", "", "bidding account (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "bid amount (required)")
	_ = cmd.MarkFlagRequired("bidder")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// NewEndCommand creates the end command.
func NewEndCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		caller string
		id     uint64
	)

	cmd := &cobra.Command{
		Use:   "end",
		Short: "Finalize an expired auction",
		Long: `Finalize an expired auction: pay the protocol fee through the vault's
receiver descriptor, bank the net proceeds for share holders, and release
the underlying to the winner. Callable by anyone once expired.

Example:
  fractional end --caller anyone --vault 1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.End(fraction.Account(caller), fraction.VaultID(id))
			})
		},
	}

	cmd.Flags().StringVar(&caller, "caller", "", "calling account (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("vault")

	return cmd
}
