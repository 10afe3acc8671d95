package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// UnmatchedAccount replaces ledger's fallback expense account.
const UnmatchedAccount = "Unmatched"

// IndexFile includes the rules and every enabled account journal.
const IndexFile = "index.journal"

var (
	entryStartRe = regexp.MustCompile(`(?m)^\d{4}-\d{2}-\d{2}`)
	// ledger's duplicate scan treats "/" inside a UUID value as a separator,
	// so "M-12/3" would never match on the next run.
	uuidSlashRe = regexp.MustCompile(`UUID: ([A-Za-z0-9-]*)/([0-9]*)`)
)

// Normalize fixes up ledger convert output before it is appended. Applying
// it twice gives the same text as applying it once.
func Normalize(out string) string {
	out = strings.ReplaceAll(out, ";{", "; {")
	out = strings.ReplaceAll(out, "Expenses:Unknown", UnmatchedAccount)
	for uuidSlashRe.MatchString(out) {
		out = uuidSlashRe.ReplaceAllString(out, "UUID: ${1}${2}")
	}
	return out
}

// CountEntries counts lines that start with an ISO date.
func CountEntries(text string) int {
	return len(entryStartRe.FindAllStringIndex(text, -1))
}

// EnsureJournal creates path (and its directory) if it does not exist.
// Existing content is never touched.
func EnsureJournal(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir ledger dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	return f.Close()
}

// Append writes a blank separator line followed by text to the end of path.
func Append(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if _, err := f.WriteString("\n" + text); err != nil {
		_ = f.Close()
		return fmt.Errorf("append journal: %w", err)
	}
	return f.Close()
}

// WriteIndex writes dir/index.journal with an include line for the rules file
// (when it exists) and for each journal, and returns its path.
func WriteIndex(dir, rulesFile string, journals []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir ledger dir: %w", err)
	}
	var lines []string
	if rulesFile != "" {
		_, err := os.Stat(filepath.Join(dir, rulesFile))
		switch {
		case err == nil:
			lines = append(lines, "include "+rulesFile)
		case !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
	}
	for _, j := range journals {
		lines = append(lines, "include "+j)
	}
	path := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write index: %w", err)
	}
	return path, nil
}
