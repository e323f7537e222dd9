package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the vault database",
		Long: `Create the SQLite database, apply the schema, and run any pending
migrations. Safe to run repeatedly; an up-to-date database is left
untouched.

Example:
  fractional init --db ./fractional.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			f := newFormatter(rootOpts, cmd)
			return f.Payload(map[string]any{
				"database": rootOpts.Database,
				"seq":      s.reg.Seq(),
				"time":     s.reg.Now(),
				"vaults":   s.reg.VaultCount(),
			})
		},
	}
}
