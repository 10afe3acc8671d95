package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/mm2ledger/internal/config"
	"github.com/jask/mm2ledger/internal/ledger"
	"github.com/jask/mm2ledger/internal/logger"
	"github.com/jask/mm2ledger/internal/moneymoney"
	"github.com/jask/mm2ledger/internal/tui"
)

type configOptions struct {
	db             string
	backend        string
	passwordSource string
	ledgerDir      string
	purposeColumn  string
	yes            bool
}

func newConfigCommand(app *App, configFile *string) *cobra.Command {
	var opts configOptions
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Discover accounts and create or update the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runConfig(cmd.Context(), *configFile, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.db, "db", "", "path to MoneyMoney.sqlite (default: existing value or the MoneyMoney container)")
	f.StringVar(&opts.backend, "backend", "", "database backend: sqlcipher or sqlite")
	f.StringVar(&opts.passwordSource, "password-source", "", "password source (env:VAR, op://..., store:NAME)")
	f.StringVar(&opts.ledgerDir, "ledger-dir", "", "directory for journal files")
	f.StringVar(&opts.purposeColumn, "purpose-column", "", "override the discovered purpose column")
	f.BoolVarP(&opts.yes, "yes", "y", false, "keep the current account selection without prompting")
	return cmd
}

// connectionCheck is what a successful test connection learned.
type connectionCheck struct {
	accounts       []moneymoney.Account
	purposeColumns []string
}

func (a *App) runConfig(ctx context.Context, path string, opts configOptions) error {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		a.printf("Updating existing config: %s\n\n", path)
	case errors.Is(err, config.ErrNotFound):
		cfg = config.Default()
	default:
		return err
	}

	if err := a.applyConfigFlags(&cfg, opts); err != nil {
		return err
	}

	a.println("Testing connection...")
	check, err := a.testConnection(ctx, cfg)
	if err != nil {
		a.println(tui.ErrorStyle.Render("Connection failed: " + err.Error()))
		return err
	}
	a.println(tui.SuccessStyle.Render(fmt.Sprintf("Connected, found %d accounts.", len(check.accounts))))

	if err := a.choosePurposeColumn(&cfg, check.purposeColumns, opts.purposeColumn); err != nil {
		return err
	}

	discovered := make([]config.AccountConfig, 0, len(check.accounts))
	for _, acc := range check.accounts {
		discovered = append(discovered, config.FromDiscovered(acc))
	}
	merged, added, removed := config.MergeAccounts(cfg.Accounts, discovered)
	if len(removed) > 0 {
		a.println()
		a.println(tui.WarningStyle.Render(fmt.Sprintf("Accounts no longer in database: %v", removed)))
	}

	before := enabledIDs(cfg.Accounts)
	if !opts.yes && a.Interactive != nil && a.Interactive() && len(merged) > 0 {
		selected, err := a.Pick(ctx, "Select accounts to enable", pickerItems(merged), before)
		if err != nil {
			return err
		}
		setEnabled(merged, selected)
	}
	cfg.Accounts = merged

	a.reportNewlyEnabled(merged, added, before)

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	a.printf("\nConfig written to %s\n", path)

	var journals []string
	for _, acc := range cfg.Enabled() {
		journals = append(journals, acc.JournalFile)
	}
	index, err := ledger.WriteIndex(cfg.Ledger.Dir, cfg.Ledger.RulesFile, journals)
	if err != nil {
		return err
	}
	a.printf("Written %s\n", index)

	a.printf("Accounts: %d total, %d enabled\n\n", len(cfg.Accounts), len(cfg.Enabled()))
	for _, acc := range cfg.Accounts {
		a.printf("  [%3d] %-40s %s\n", acc.ID, acc.MMName, statusLabel(acc.Enabled))
	}
	return nil
}

func (a *App) applyConfigFlags(cfg *config.Config, opts configOptions) error {
	if opts.backend != "" {
		cfg.Database.Backend = opts.backend
	}
	if opts.passwordSource != "" {
		cfg.Database.PasswordSource = opts.passwordSource
	}
	if opts.ledgerDir != "" {
		cfg.Ledger.Dir = opts.ledgerDir
	}
	switch {
	case opts.db != "":
		cfg.Database.Path = opts.db
	case cfg.Database.Path != "":
	default:
		if a.FindDatabase != nil {
			if p, ok := a.FindDatabase(); ok {
				cfg.Database.Path = p
				a.printf("Found MoneyMoney database: %s\n", p)
			}
		}
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("%w: no MoneyMoney database found, pass --db", config.ErrNotFound)
	}
	return nil
}

func (a *App) testConnection(ctx context.Context, cfg config.Config) (connectionCheck, error) {
	password, err := a.resolver().Resolve(ctx, cfg.Database.PasswordSource)
	if err != nil {
		return connectionCheck{}, err
	}
	client, closeFn, err := moneymoney.Open(a.Runner, cfg.Connection(password))
	if err != nil {
		return connectionCheck{}, err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(cerr).Msg("close database")
		}
	}()

	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return connectionCheck{}, err
	}
	cols, err := client.PurposeColumnCandidates(ctx)
	if err != nil {
		return connectionCheck{}, err
	}
	return connectionCheck{accounts: accounts, purposeColumns: cols}, nil
}

// choosePurposeColumn applies the override, else the first candidate, else
// keeps what the config already had.
func (a *App) choosePurposeColumn(cfg *config.Config, candidates []string, override string) error {
	if override != "" {
		if !slices.Contains(candidates, override) {
			return fmt.Errorf("%w: purpose column %q not in transactions table (candidates: %s)",
				config.ErrNotFound, override, candidateList(candidates))
		}
		cfg.SetPurposeColumn(override)
		a.printf("Using purpose column: %s\n", override)
		return nil
	}
	if col, ok := moneymoney.PurposeColumn(candidates); ok {
		cfg.SetPurposeColumn(col)
		a.printf("Discovered purpose column: %s\n", col)
		if len(candidates) > 1 {
			a.println(tui.WarningStyle.Render(fmt.Sprintf(
				"Several purpose column candidates (%s); pass --purpose-column to pick another.", candidateList(candidates))))
		}
	}
	return nil
}

func (a *App) reportNewlyEnabled(merged, added []config.AccountConfig, before []int64) {
	isNew := make(map[int64]bool, len(added))
	for _, acc := range added {
		isNew[acc.ID] = true
	}
	var fresh []config.AccountConfig
	for _, acc := range merged {
		if acc.Enabled && (isNew[acc.ID] || !slices.Contains(before, acc.ID)) {
			fresh = append(fresh, acc)
		}
	}
	if len(fresh) == 0 {
		return
	}
	a.printf("\nNewly enabled %d account(s), edit the config to rename or change start dates:\n", len(fresh))
	for _, acc := range fresh {
		a.printf("  [%d] %s (%s) -> %s from %s\n", acc.ID, acc.MMName, acc.Currency, acc.LedgerAccount, acc.StartDate)
	}
}

func pickerItems(accts []config.AccountConfig) []tui.Item {
	items := make([]tui.Item, 0, len(accts))
	for _, acc := range accts {
		items = append(items, tui.Item{
			ID:    acc.ID,
			Label: fmt.Sprintf("[%3d] %s", acc.ID, acc.MMName),
			Meta:  fmt.Sprintf("%s (%s)", acc.LedgerAccount, acc.Currency),
		})
	}
	return items
}

func enabledIDs(accts []config.AccountConfig) []int64 {
	var ids []int64
	for _, acc := range accts {
		if acc.Enabled {
			ids = append(ids, acc.ID)
		}
	}
	return ids
}

func setEnabled(accts []config.AccountConfig, ids []int64) {
	for i := range accts {
		accts[i].Enabled = slices.Contains(ids, accts[i].ID)
	}
}

func candidateList(cols []string) string {
	if len(cols) == 0 {
		return "none"
	}
	return strings.Join(cols, ", ")
}

func statusLabel(enabled bool) string {
	if enabled {
		return tui.SuccessStyle.Render("enabled")
	}
	return tui.ErrorStyle.Render("disabled")
}
