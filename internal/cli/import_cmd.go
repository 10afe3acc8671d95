package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jask/mm2ledger/internal/config"
	"github.com/jask/mm2ledger/internal/history"
	"github.com/jask/mm2ledger/internal/importer"
	"github.com/jask/mm2ledger/internal/logger"
	"github.com/jask/mm2ledger/internal/tui"
)

func newImportCommand(app *App, configFile *string) *cobra.Command {
	var (
		account   string
		keepGoing bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from MoneyMoney into ledger journals",
		Long:  "Imports all enabled accounts by default, or a single account with --account.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runImport(cmd.Context(), *configFile, account, keepGoing)
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "import only this account (by ledger name)")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue with the next account after a failure")
	return cmd
}

func (a *App) runImport(ctx context.Context, path, account string, keepGoing bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	store, closeHistory := a.openHistory(ctx, cfg)
	defer closeHistory()
	var rec importer.Recorder
	if store != nil {
		rec = store
	}

	svc := importer.New(cfg, a.Runner, a.resolver(), rec)
	svc.ContinueOnError = keepGoing

	if account != "" {
		n, err := svc.ImportByLedgerAccount(ctx, account)
		if err != nil {
			return err
		}
		a.printCount("", account, n)
		return nil
	}

	results, err := svc.ImportAll(ctx)
	total := 0
	for _, r := range results {
		if r.Err != nil {
			a.println(tui.ErrorStyle.Render("  " + r.LedgerAccount + ": failed"))
			continue
		}
		total += r.Count
		a.printCount("  ", r.LedgerAccount, r.Count)
	}
	a.printf("\nTotal: %d new transactions across %d accounts\n", total, len(importer.Counts(results)))
	return err
}

func (a *App) printCount(indent, account string, n int) {
	if n > 0 {
		a.printf("%s%s: %s\n", indent, account, tui.SuccessStyle.Render(plural(n, "new transaction")))
		return
	}
	a.printf("%s%s: %s\n", indent, account, tui.MutedStyle.Render("up to date"))
}

// openHistory opens the run log next to the journals. The import does not
// depend on it, so failures only warn.
func (a *App) openHistory(ctx context.Context, cfg config.Config) (*history.Store, func()) {
	store, err := history.Open(history.Path(cfg.Ledger.Dir))
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("run history unavailable")
		return nil, func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Msg("close run history")
		}
	}
}
