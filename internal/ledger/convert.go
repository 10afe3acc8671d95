// Package ledger drives `ledger convert` and maintains the journal files it
// feeds.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jask/mm2ledger/internal/command"
	"github.com/jask/mm2ledger/internal/logger"
)

var ErrConversionFailed = errors.New("conversion failed")

// DateFormat is the date layout of the exchange CSV, in ledger's strftime syntax.
const DateFormat = "%Y-%m-%d"

// ConvertRequest names the inputs of one conversion.
type ConvertRequest struct {
	CSVPath     string
	RulesPath   string
	JournalPath string
	Account     string
}

// Converter runs the ledger CLI.
type Converter struct {
	Runner command.Runner
	Binary string
}

func NewConverter(r command.Runner) *Converter {
	return &Converter{Runner: r, Binary: "ledger"}
}

// Args returns the ledger command line for req. Amounts are inverted because
// MoneyMoney signs them from the bank's point of view.
func (req ConvertRequest) Args() []string {
	return []string{
		"convert", req.CSVPath,
		"--no-pager",
		"--invert",
		"--file", req.RulesPath,
		"--file", req.JournalPath,
		"--date-format=" + DateFormat,
		"--account", req.Account,
	}
}

// Convert returns ledger's output for req. Entries whose UUID already appears
// in the journal are left out by ledger itself.
func (c *Converter) Convert(ctx context.Context, req ConvertRequest) (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "ledger"
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("tool", bin).Str("account", req.Account).Msg("converting")

	res, err := c.Runner.Run(ctx, bin, req.Args(), nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: ledger convert failed: %s", ErrConversionFailed, res.Diagnostic())
	}
	return string(res.Stdout), nil
}
