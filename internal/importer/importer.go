// Package importer moves booked MoneyMoney transactions into the per-account
// ledger journals.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/mm2ledger/internal/command"
	"github.com/jask/mm2ledger/internal/config"
	"github.com/jask/mm2ledger/internal/history"
	"github.com/jask/mm2ledger/internal/ledger"
	"github.com/jask/mm2ledger/internal/logger"
	"github.com/jask/mm2ledger/internal/moneymoney"
)

// ErrAccountDisabled is returned when a single-account import names a disabled account.
var ErrAccountDisabled = errors.New("account disabled")

// PasswordResolver turns the configured password source into a password.
type PasswordResolver interface {
	Resolve(ctx context.Context, source string) (string, error)
}

// Fetcher returns the booked transactions of one account.
type Fetcher interface {
	Transactions(ctx context.Context, accountID int64, startDate, purposeColumn string) ([]moneymoney.Transaction, error)
}

// OpenFunc connects to the database with password.
type OpenFunc func(ctx context.Context, conn moneymoney.Connection) (Fetcher, func() error, error)

// Converter turns an exchange CSV into ledger text.
type Converter interface {
	Convert(ctx context.Context, req ledger.ConvertRequest) (string, error)
}

// Recorder stores the outcome of each account import.
type Recorder interface {
	Record(ctx context.Context, r history.Run) error
}

// Service imports accounts from one config.
type Service struct {
	Config    config.Config
	Secrets   PasswordResolver
	Open      OpenFunc
	Converter Converter
	// History is optional.
	History Recorder
	// TempDir holds the exchange files; empty means os.TempDir.
	TempDir string
	// ContinueOnError makes ImportAll carry on past a failing account and
	// report every failure at the end. By default the first failure aborts
	// the batch.
	ContinueOnError bool

	now func() time.Time
}

// Result is the outcome for one account of ImportAll.
type Result struct {
	LedgerAccount string
	AccountID     int64
	Count         int
	Err           error
}

// Counts maps ledger account to imported count for the successful results.
func Counts(results []Result) map[string]int {
	out := make(map[string]int, len(results))
	for _, r := range results {
		if r.Err == nil {
			out[r.LedgerAccount] = r.Count
		}
	}
	return out
}

// New wires a Service that talks to the real database and ledger through r.
func New(cfg config.Config, r command.Runner, secrets PasswordResolver, rec Recorder) *Service {
	return &Service{
		Config:    cfg,
		Secrets:   secrets,
		Open:      DatabaseOpener(r),
		Converter: ledger.NewConverter(r),
		History:   rec,
	}
}

// DatabaseOpener opens the configured MoneyMoney backend.
func DatabaseOpener(r command.Runner) OpenFunc {
	return func(_ context.Context, conn moneymoney.Connection) (Fetcher, func() error, error) {
		c, closeFn, err := moneymoney.Open(r, conn)
		if err != nil {
			return nil, nil, err
		}
		return c, closeFn, nil
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// ImportAccount imports new transactions of acct and returns how many
// entries were appended to its journal.
func (s *Service) ImportAccount(ctx context.Context, acct config.AccountConfig) (int, error) {
	started := s.clock()
	fetched, count, err := s.importAccount(ctx, acct)
	s.record(ctx, history.Run{
		ID:            uuid.NewString(),
		LedgerAccount: acct.LedgerAccount,
		AccountID:     acct.ID,
		Fetched:       fetched,
		Appended:      count,
		Error:         errText(err),
		StartedAt:     started,
		FinishedAt:    s.clock(),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", acct.LedgerAccount, err)
	}
	return count, nil
}

func (s *Service) importAccount(ctx context.Context, acct config.AccountConfig) (fetched, count int, err error) {
	log := logger.FromContext(ctx).With().Str("account", acct.LedgerAccount).Int64("id", acct.ID).Logger()

	password, err := s.Secrets.Resolve(ctx, s.Config.Database.PasswordSource)
	if err != nil {
		return 0, 0, err
	}

	src, closeSrc, err := s.Open(ctx, s.Config.Connection(password))
	if err != nil {
		return 0, 0, err
	}
	txs, err := src.Transactions(ctx, acct.ID, acct.StartDate, s.Config.PurposeColumn())
	if cerr := closeSrc(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, 0, err
	}
	log.Debug().Int("fetched", len(txs)).Str("since", acct.StartDate).Msg("fetched transactions")
	if len(txs) == 0 {
		return 0, 0, nil
	}

	journal := s.Config.JournalPath(acct)
	if err := ledger.EnsureJournal(journal); err != nil {
		return len(txs), 0, err
	}

	out, err := s.convert(ctx, acct, journal, txs)
	if err != nil {
		return len(txs), 0, err
	}
	if strings.TrimSpace(out) == "" {
		log.Info().Int("fetched", len(txs)).Msg("up to date")
		return len(txs), 0, nil
	}

	out = ledger.Normalize(out)
	if err := ledger.Append(journal, out); err != nil {
		return len(txs), 0, err
	}
	count = ledger.CountEntries(out)
	log.Info().Int("fetched", len(txs)).Int("appended", count).Str("journal", journal).Msg("imported")
	return len(txs), count, nil
}

func (s *Service) convert(ctx context.Context, acct config.AccountConfig, journal string, txs []moneymoney.Transaction) (string, error) {
	csvPath, err := writeExchangeFile(s.TempDir, txs)
	if err != nil {
		return "", err
	}
	defer os.Remove(csvPath)

	return s.Converter.Convert(ctx, ledger.ConvertRequest{
		CSVPath:     csvPath,
		RulesPath:   s.Config.RulesPath(),
		JournalPath: journal,
		Account:     acct.LedgerAccount,
	})
}

// ImportAll imports every enabled account in config order. A cancelled ctx
// ends the batch even with ContinueOnError.
func (s *Service) ImportAll(ctx context.Context) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, acct := range s.Config.Enabled() {
		n, err := s.ImportAccount(ctx, acct)
		results = append(results, Result{LedgerAccount: acct.LedgerAccount, AccountID: acct.ID, Count: n, Err: err})
		if err == nil {
			continue
		}
		if !s.ContinueOnError || ctx.Err() != nil {
			return results, err
		}
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}

// ImportByLedgerAccount imports the single account named by its ledger account.
func (s *Service) ImportByLedgerAccount(ctx context.Context, name string) (int, error) {
	acct, err := s.Config.Account(name)
	if err != nil {
		return 0, err
	}
	if !acct.Enabled {
		return 0, fmt.Errorf("%w: %s. Enable it in the config first", ErrAccountDisabled, name)
	}
	return s.ImportAccount(ctx, acct)
}

func (s *Service) record(ctx context.Context, r history.Run) {
	if s.History == nil {
		return
	}
	if err := s.History.Record(ctx, r); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("could not record import run")
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
