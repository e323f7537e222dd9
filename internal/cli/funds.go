package cli

import (
	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// NewFaucetCommand creates the faucet command.
func NewFaucetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		account string
		amount  string
	)

	cmd := &cobra.Command{
		Use:   "faucet",
		Short: "Credit settlement currency to an account",
		Long: `Credit settlement currency to an account. The bootstrap path for
local sessions; a deployment funds accounts on the host chain instead.

Example:
  fractional faucet --account alice --amount 1000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseAmountFlag("amount", amount)
			if err != nil {
				return err
			}
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.Faucet(fraction.Account(account), amt)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account to credit (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, 8-decimal fixed point (required)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// NewRegisterReceiverCommand creates the register-receiver command.
func NewRegisterReceiverCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		account string
		path    string
	)

	cmd := &cobra.Command{
		Use:   "register-receiver",
		Short: "Publish a receiver path for an account",
		Long: `Publish a named receiver path for an account. Fee payments addressed
through a path only succeed once it is registered; an unregistered fee
receiver path blocks auction finalization.

Example:
  fractional register-receiver --account treasury --path /receivers/main`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(rootOpts, cmd, func(r *vault.Registry) error {
				return r.RegisterReceiver(fraction.Account(account), path)
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "receiving account (required)")
	cmd.Flags().StringVar(&path, "path", "", "receiver path (required)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
