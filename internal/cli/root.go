package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fracdao/fractional/internal/fraction"
)

// DefaultOwner is the protocol owner account a CLI session runs under.
// Only this account may change the fee rate or repair a vault's fee
// receiver descriptor.
const DefaultOwner = fraction.Account("fractional")

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Database  string
	PolicyDir string
	Verbose   bool
	Format    string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fractional CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fractional",
		Short: "Fractional - fractionalized vault auctions",
		Long: `Fractionalized vault registry: mint vaults over custodied items, issue
shares, vote reserve prices, run ascending auctions, and settle proceeds
pro rata. Every operation is journaled to SQLite and replayable.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "fractional.db", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.PolicyDir, "policy", "", "directory of CUE policy files (default: embedded policy)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewTickCommand(opts))
	cmd.AddCommand(NewFaucetCommand(opts))
	cmd.AddCommand(NewRegisterReceiverCommand(opts))
	cmd.AddCommand(NewMintVaultCommand(opts))
	cmd.AddCommand(NewMintSharesCommand(opts))
	cmd.AddCommand(NewVoteCommand(opts))
	cmd.AddCommand(NewTransferCommand(opts))
	cmd.AddCommand(NewStartCommand(opts))
	cmd.AddCommand(NewBidCommand(opts))
	cmd.AddCommand(NewEndCommand(opts))
	cmd.AddCommand(NewCashCommand(opts))
	cmd.AddCommand(NewRedeemCommand(opts))
	cmd.AddCommand(NewWithdrawCommand(opts))
	cmd.AddCommand(NewReclaimCommand(opts))
	cmd.AddCommand(NewSetFeeCommand(opts))
	cmd.AddCommand(NewSetFeeReceiverCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
