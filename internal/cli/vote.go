package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewVoteCommand creates the vote command.
func NewVoteCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		caller string
		id     uint64
		start  uint64
		count  uint64
		price  string
	)

	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Cast a reserve-price vote over a share range",
		Long: `Record a reserve-price vote carried by every share in a contiguous
range the caller holds. Prior votes on those shares are replaced; the
auction's weighted reserve is the vote-weighted average.

Example:
  fractional vote --caller bob --vault 1 --start 1 --count 900 --price 100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmountFlag("price", price)
			if err != nil {
				return err
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.CastVote(fraction.Account(caller), fraction.VaultID(id),
					fraction.ShareID(start), count, amt)
			})
		},
	}

	cmd.Flags().StringVar(&caller, "caller", "", "voting account (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().Uint64Var(&start, "start", 0, "first share id of the range (required)")
	cmd.Flags().Uint64Var(&count, "count", 0, "shares in the range (required)")
	cmd.Flags().StringVar(&price, "price", "", "reserve price vote (required)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("count")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

// NewTransferCommand creates the transfer command.
func NewTransferCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		from string
		to   string
		id   uint64
		ids  string
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer shares between accounts",
		Long: `Transfer the listed share ids from one account to another. Votes do
not follow a share: transferred shares arrive vote-less.

Example:
  fractional transfer --from bob --to carol --vault 1 --ids 1-100`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseShareIDs(ids)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --ids", err)
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.TransferShares(fraction.Account(from), fraction.Account(to),
					fraction.VaultID(id), shares)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "sending account (required)")
	cmd.Flags().StringVar(&to, "to", "", "receiving account (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().StringVar(&ids, "ids", "", "share ids, range shorthand allowed (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}
