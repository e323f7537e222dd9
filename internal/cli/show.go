package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewShowCommand creates the show command and its view subcommands.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Inspect registry state",
		Long: `Read-only views over the persisted registry state.

Examples:
  fractional show vault --vault 1
  fractional show reserve --vault 1
  fractional show balance --account alice`,
	}

	cmd.AddCommand(newShowVaultCommand(rootOpts))
	cmd.AddCommand(newShowReserveCommand(rootOpts))
	cmd.AddCommand(newShowEscrowCommand(rootOpts))
	cmd.AddCommand(newShowSupplyCommand(rootOpts))
	cmd.AddCommand(newShowBalanceCommand(rootOpts))
	cmd.AddCommand(newShowBurnerCommand(rootOpts))

	return cmd
}

// runView opens a session, evaluates a read-only view, and renders it.
func runView(opts *RootOptions, cmd *cobra.Command, view func(r *vault.Registry) (map[string]any, error)) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	f := newFormatter(opts, cmd)
	data, err := view(s.reg)
	if err != nil {
		code := fraction.CodeOf(err)
		if code == "" {
			return WrapExitError(ExitCommandError, "view failed", err)
		}
		if werr := f.Error(string(code), err.Error()); werr != nil {
			return werr
		}
		return NewExitError(ExitFailure, err.Error())
	}
	return f.Payload(data)
}

func newShowVaultCommand(rootOpts *RootOptions) *cobra.Command {
	var id uint64

	cmd := &cobra.Command{
		Use:           "vault",
		Short:         "Show a vault's record and auction state",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, cmd, func(r *vault.Registry) (map[string]any, error) {
				info, err := r.GetVault(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				items, err := r.GetUnderlyingIds(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				holder, err := r.UnderlyingOwner(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				itemList := make([]any, len(items))
				for i, it := range items {
					itemList[i] = it
				}
				return map[string]any{
					"vault":             info.ID,
					"curator":           info.Curator,
					"state":             info.State,
					"auction_end":       info.AuctionEnd,
					"live_price":        info.LivePrice,
					"winning":           info.Winning,
					"total_minted":      info.TotalMinted,
					"cap":               info.Cap,
					"live_shares":       info.LiveShares,
					"net_proceeds":      info.NetProceeds,
					"proceeds_left":     info.ProceedsLeft,
					"underlying":        itemList,
					"underlying_holder": holder,
				}, nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	_ = cmd.MarkFlagRequired("vault")

	return cmd
}

func newShowReserveCommand(rootOpts *RootOptions) *cobra.Command {
	var id uint64

	cmd := &cobra.Command{
		Use:           "reserve",
		Short:         "Show a vault's voting weight and weighted reserve",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, cmd, func(r *vault.Registry) (map[string]any, error) {
				ri, err := r.GetReserveInfo(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"vault":         fraction.VaultID(id),
					"voting_weight": ri.VotingWeight,
					"reserve":       ri.Reserve,
					"defined":       ri.Defined,
				}, nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	_ = cmd.MarkFlagRequired("vault")

	return cmd
}

func newShowEscrowCommand(rootOpts *RootOptions) *cobra.Command {
	var id uint64

	cmd := &cobra.Command{
		Use:           "escrow",
		Short:         "Show a vault's auction escrow balance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, cmd, func(r *vault.Registry) (map[string]any, error) {
				amt, err := r.GetEscrowBalance(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"vault":  fraction.VaultID(id),
					"escrow": amt,
				}, nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	_ = cmd.MarkFlagRequired("vault")

	return cmd
}

func newShowSupplyCommand(rootOpts *RootOptions) *cobra.Command {
	var id uint64

	cmd := &cobra.Command{
		Use:           "supply",
		Short:         "Show a vault's minted share supply",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, cmd, func(r *vault.Registry) (map[string]any, error) {
				supply, err := r.GetSupply(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				info, err := r.GetVault(fraction.VaultID(id))
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"vault":        fraction.VaultID(id),
					"total_minted": supply,
					"live_shares":  info.LiveShares,
					"cap":          info.Cap,
				}, nil
			})
		},
	}

	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	_ = cmd.MarkFlagRequired("vault")

	return cmd
}

func newShowBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:           "balance",
		Short:         "Show an account's settlement-currency balance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, cmd, func(r *vault.Registry) (map[string]any, error) {
				return map[string]any{
					"account": fraction.Account(account),
					"balance": r.Balance(fraction.Account(account)),
				}, nil
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newShowBurnerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "burner",
		Short:         "Show the reclaim account's pending burn batches",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, cmd, func(r *vault.Registry) (map[string]any, error) {
				acct := r.BurnerAccount()
				count := r.GetBurnBatchCount(acct)
				batches := make([]any, 0, count)
				for i := uint64(0); i < count; i++ {
					n, err := r.GetBurnBatchAt(acct, i)
					if err != nil {
						return nil, err
					}
					batches = append(batches, n)
				}
				return map[string]any{
					"account": acct,
					"batches": batches,
				}, nil
			})
		},
	}

	return cmd
}
