package cli

import (
	"github.com/spf13/cobra"

	"github.com/jask/mm2ledger/internal/config"
)

func newListCommand(app *App, configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts and their status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			app.printf("Database: %s\n", cfg.Database.Path)
			app.printf("Ledger dir: %s\n", cfg.Ledger.Dir)
			app.printf("Rules file: %s\n\n", cfg.Ledger.RulesFile)
			for _, acc := range cfg.Accounts {
				app.printf("  [%3d] %-40s -> %-40s %s\n", acc.ID, acc.MMName, acc.LedgerAccount, statusLabel(acc.Enabled))
			}
			return nil
		},
	}
}
