package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/mm2ledger/internal/config"
	"github.com/jask/mm2ledger/internal/history"
	"github.com/jask/mm2ledger/internal/tui"
)

func newHistoryCommand(app *App, configFile *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			store, err := history.Open(history.Path(cfg.Ledger.Dir))
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				app.println("No imports recorded yet.")
				return nil
			}
			for _, r := range runs {
				app.printf("%s  %-40s %s\n", r.StartedAt.Local().Format(time.DateTime), r.LedgerAccount, runSummary(r))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func runSummary(r history.Run) string {
	if r.Failed() {
		return tui.ErrorStyle.Render("failed: " + r.Error)
	}
	if r.Appended == 0 {
		return tui.MutedStyle.Render(fmt.Sprintf("up to date (%d fetched)", r.Fetched))
	}
	return tui.SuccessStyle.Render(fmt.Sprintf("%s (%d fetched)", plural(r.Appended, "new transaction"), r.Fetched))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
