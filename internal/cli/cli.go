// Package cli is the mm2ledger command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jask/mm2ledger/internal/command"
	"github.com/jask/mm2ledger/internal/config"
	"github.com/jask/mm2ledger/internal/logger"
	"github.com/jask/mm2ledger/internal/moneymoney"
	"github.com/jask/mm2ledger/internal/secrets"
	"github.com/jask/mm2ledger/internal/tui"
)

// PickFunc asks the user which accounts to enable.
type PickFunc func(ctx context.Context, title string, items []tui.Item, preselected []int64) ([]int64, error)

// App carries everything the commands touch outside the process.
type App struct {
	Runner command.Runner
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Secrets backs store: password sources and `secret set`.
	Secrets *secrets.Store
	// Interactive reports whether the account picker may be shown.
	Interactive  func() bool
	Pick         PickFunc
	FindDatabase func() (string, bool)
}

// NewApp wires the real process environment.
func NewApp() *App {
	store, err := secrets.DefaultStore()
	if err != nil {
		store = nil
	}
	return &App{
		Runner:       command.NewExec(),
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Secrets:      store,
		Interactive:  stdinIsTerminal,
		FindDatabase: moneymoney.FindDatabase,
		Pick: func(ctx context.Context, title string, items []tui.Item, preselected []int64) ([]int64, error) {
			return tui.RunChecklist(ctx, title, items, preselected, os.Stdin, os.Stderr)
		},
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var (
		configFile string
		verbose    bool
	)
	root := &cobra.Command{
		Use:           "mm2ledger",
		Short:         "Import MoneyMoney transactions into ledger journals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logger.NewConsole(app.Stderr, verbose)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	root.PersistentFlags().StringVarP(&configFile, "config-file", "c", config.DefaultFile, "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newConfigCommand(app, &configFile),
		newImportCommand(app, &configFile),
		newListCommand(app, &configFile),
		newHistoryCommand(app, &configFile),
		newSecretCommand(app),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(app.Stderr, tui.ErrorStyle.Render("Error: ")+err.Error())
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}

func (a *App) resolver() *secrets.Resolver {
	return secrets.NewResolver(a.Runner, a.Secrets)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Stdout, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.Stdout, args...)
}
