package config

import (
	"sort"
	"strings"

	"github.com/jask/mm2ledger/internal/moneymoney"
)

// DefaultLedgerAccount names the ledger account for a MoneyMoney account.
func DefaultLedgerAccount(mmName string) string {
	return "Assets:" + mmName
}

// JournalFilename derives the journal file name from a ledger account.
func JournalFilename(ledgerAccount string) string {
	name := strings.NewReplacer(":", "_", " ", "_").Replace(ledgerAccount)
	return name + ".journal"
}

// FromDiscovered builds a disabled AccountConfig with generated defaults.
func FromDiscovered(a moneymoney.Account) AccountConfig {
	ledger := DefaultLedgerAccount(a.Name)
	return AccountConfig{
		ID:            a.ID,
		MMName:        a.Name,
		Currency:      a.Currency,
		LedgerAccount: ledger,
		JournalFile:   JournalFilename(ledger),
		StartDate:     DefaultStartDate,
		IBAN:          a.IBAN,
		BIC:           a.BIC,
	}
}

// MergeAccounts reconciles the saved accounts with the ones found in the
// database. Surviving entries keep their user fields and get name, currency,
// IBAN and BIC refreshed; vanished ids are reported in removed and dropped;
// new ids are appended disabled and reported in added. merged is sorted by id.
// The inputs are not modified.
func MergeAccounts(existing, discovered []AccountConfig) (merged, added []AccountConfig, removed []int64) {
	byID := make(map[int64]AccountConfig, len(discovered))
	for _, d := range discovered {
		if _, dup := byID[d.ID]; !dup {
			byID[d.ID] = d
		}
	}

	known := make(map[int64]bool, len(existing))
	merged = make([]AccountConfig, 0, len(existing)+len(discovered))
	for _, e := range existing {
		if known[e.ID] {
			continue
		}
		known[e.ID] = true
		d, ok := byID[e.ID]
		if !ok {
			removed = append(removed, e.ID)
			continue
		}
		e.MMName = d.MMName
		e.Currency = d.Currency
		e.IBAN = d.IBAN
		e.BIC = d.BIC
		merged = append(merged, e)
	}

	for _, d := range discovered {
		if known[d.ID] {
			continue
		}
		known[d.ID] = true
		d.Enabled = false
		added = append(added, d)
		merged = append(merged, d)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged, added, removed
}
