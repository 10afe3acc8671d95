package config

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/mm2ledger/internal/moneymoney"
)

// Connection returns the database connection settings with password filled in.
func (c Config) Connection(password string) moneymoney.Connection {
	return moneymoney.Connection{
		Backend:             c.Database.Backend,
		Path:                c.Database.Path,
		Password:            password,
		CipherCompatibility: c.Database.CipherCompatibility,
	}
}

// Account finds the account whose ledger account is name. The error for an
// unknown name lists the enabled accounts and the closest match.
func (c Config) Account(name string) (AccountConfig, error) {
	for _, a := range c.Accounts {
		if a.LedgerAccount == name {
			return a, nil
		}
	}
	var available []string
	for _, a := range c.Enabled() {
		available = append(available, a.LedgerAccount)
	}
	list := strings.Join(available, ", ")
	if list == "" {
		list = "(none enabled)"
	}
	msg := fmt.Sprintf("%v: account %s\nAvailable accounts: %s", ErrNotFound, name, list)
	if s, ok := c.closestLedgerAccount(name); ok {
		msg += fmt.Sprintf("\nDid you mean %s?", s)
	}
	return AccountConfig{}, &notFoundError{msg: msg}
}

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string { return e.msg }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

// closestLedgerAccount suggests a configured ledger account within a third of
// name's length in edit distance.
func (c Config) closestLedgerAccount(name string) (string, bool) {
	best, bestDist := "", -1
	for _, a := range c.Accounts {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(a.LedgerAccount))
		if bestDist < 0 || d < bestDist {
			best, bestDist = a.LedgerAccount, d
		}
	}
	if bestDist < 0 || bestDist > len(name)/3+1 {
		return "", false
	}
	return best, true
}
