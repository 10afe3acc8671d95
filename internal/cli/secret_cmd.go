package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/mm2ledger/internal/secrets"
	"github.com/jask/mm2ledger/internal/tui"
)

func newSecretCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage passwords in the local secret store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME",
		Short: "Store a password read from stdin for the store:NAME source",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if app.Secrets == nil {
				return fmt.Errorf("%w: no secret store available", secrets.ErrMissingSecret)
			}
			line, err := bufio.NewReader(app.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("%w: read password from stdin: %v", secrets.ErrSecretReadFailed, err)
			}
			value := strings.TrimRight(line, "\r\n")
			if value == "" {
				return errors.New("empty password")
			}
			if err := app.Secrets.Set(args[0], value); err != nil {
				return err
			}
			app.println(tui.SuccessStyle.Render("Stored " + args[0] + "."))
			app.printf("Use password_source = %q\n", "store:"+args[0])
			return nil
		},
	})
	return cmd
}
