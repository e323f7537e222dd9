package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewCashCommand creates the cash command.
func NewCashCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		holder string
		id     uint64
		ids    string
	)

	cmd := &cobra.Command{
		Use:   "cash",
		Short: "Burn shares for a pro-rata cut of the proceeds",
		Long: `Burn a batch of held shares against a settled auction and receive the
matching pro-rata cut of the net proceeds. All-or-nothing per batch; the
batch size is capped by policy.

Example:
  fractional cash --holder bob --vault 1 --ids 1-100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseShareIDs(ids)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --ids", err)
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				_, err := r.Cash(fraction.Account(holder), fraction.VaultID(id), shares)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&holder, "holder", "", "share holder (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().StringVar(&ids, "ids", "", "share ids to cash, range shorthand allowed (required)")
	_ = cmd.MarkFlagRequired("holder")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

// NewRedeemCommand creates the redeem command.
func NewRedeemCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		holder string
		id     uint64
		amount uint64
	)

	cmd := &cobra.Command{
		Use:   "redeem",
		Short: "Incrementally burn the full supply for the underlying",
		Long: `Burn held shares toward reclaiming the underlying without an auction.
Only a sole holder of the entire minted supply may redeem, and only
before an auction starts; once the cumulative redeemed count reaches the
supply the underlying is released.

Example:
  fractional redeem --holder bob --vault 1 --amount 400`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.Redeem(fraction.Account(holder), fraction.VaultID(id), amount)
			})
		},
	}

	cmd.Flags().StringVar(&holder, "holder", "", "share holder (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "shares to burn (required)")
	_ = cmd.MarkFlagRequired("holder")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// NewWithdrawCommand creates the withdraw command.
func NewWithdrawCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		holder string
		id     uint64
	)

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Burn the full supply and take the underlying",
		Long: `One-shot form of redeem: a sole holder of the entire minted supply
burns it all and takes the underlying directly, bypassing the auction.

Example:
  fractional withdraw --holder bob --vault 1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.WithdrawUnderlying(fraction.Account(holder), fraction.VaultID(id))
			})
		},
	}

	cmd.Flags().StringVar(&holder, "holder", "", "share holder (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	_ = cmd.MarkFlagRequired("holder")
	_ = cmd.MarkFlagRequired("vault")

	return cmd
}

// NewReclaimCommand creates the reclaim command.
func NewReclaimCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		reclaimer string
		index     uint64
	)

	cmd := &cobra.Command{
		Use:   "reclaim",
		Short: "Drain one pending burn batch",
		Long: `Drain one burn batch recorded against the reclaim account. Settlement
burns accrue as batches; each reclaim call releases exactly one.

Example:
  fractional reclaim --reclaimer protocol/burner --index 0`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				_, err := r.ReclaimStorage(fraction.Account(reclaimer), index)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&reclaimer, "reclaimer", string(vault.DefaultBurnerAccount), "reclaim account")
	cmd.Flags().Uint64Var(&index, "index", 0, "burn batch index")

	return cmd
}
