package moneymoney

import (
	"os"
	"path/filepath"
)

// FindDatabase returns the default location of the MoneyMoney database for
// the current user if a file exists there.
func FindDatabase() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, "Library", "Containers", "com.moneymoney-app.retail",
		"Data", "Library", "Application Support", "MoneyMoney", "Database", "MoneyMoney.sqlite")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
