package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewMintVaultCommand creates the mint-vault command.
func NewMintVaultCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		curator string
		items   string
		cap     uint64
	)

	cmd := &cobra.Command{
		Use:   "mint-vault",
		Short: "Create a vault over custodied items",
		Long: `Create a vault custodying the given underlying item ids, with a fixed
share cap. Items lists ids with range shorthand ("1,2,5-9").

Example:
  fractional mint-vault --curator bob --items 7,8 --cap 1000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(items)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --items", err)
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				_, err := r.MintVault(fraction.Account(curator), ids, cap)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&curator, "curator", "", "curating account (required)")
	cmd.Flags().StringVar(&items, "items", "", "underlying item ids (required)")
	cmd.Flags().Uint64Var(&cap, "cap", 0, "share supply cap (required)")
	_ = cmd.MarkFlagRequired("curator")
	_ = cmd.MarkFlagRequired("items")
	_ = cmd.MarkFlagRequired("cap")

	return cmd
}

// NewMintSharesCommand creates the mint-shares command.
func NewMintSharesCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		caller string
		id     uint64
		count  uint64
	)

	cmd := &cobra.Command{
		Use:   "mint-shares",
		Short: "Mint shares of a vault to its curator",
		Long: `Mint a contiguous range of share ids to the vault's curator. Only the
curator may mint, and never past the vault's cap.

Example:
  fractional mint-shares --caller bob --vault 1 --count 1000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				_, err := r.MintShares(fraction.Account(caller), fraction.VaultID(id), count)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&caller, "caller", "", "calling account (required)")
	cmd.Flags().Uint64Var(&id, "vault", 0, "vault id (required)")
	cmd.Flags().Uint64Var(&count, "count", 0, "shares to mint (required)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("vault")
	_ = cmd.MarkFlagRequired("count")

	return cmd
}
