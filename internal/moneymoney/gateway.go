// Package moneymoney reads accounts and booked transactions out of a
// MoneyMoney database.
package moneymoney

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jask/mm2ledger/internal/command"
	"github.com/jask/mm2ledger/internal/logger"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrQueryFailed          = errors.New("query failed")
	ErrInvalidQuery         = errors.New("invalid query input")
	ErrNotFound             = errors.New("not found")
)

// DefaultCipherCompatibility matches current MoneyMoney releases.
const DefaultCipherCompatibility = 4

// Row is one result row keyed by column name. Numbers are json.Number when
// they come from the sqlcipher CLI and int64/float64 from the SQLite backend.
type Row map[string]any

// Gateway runs a SQL statement against the database.
type Gateway interface {
	Query(ctx context.Context, sql string) ([]Row, error)
}

// SQLCipher queries an encrypted database through the sqlcipher shell.
type SQLCipher struct {
	Runner              command.Runner
	Path                string
	Password            string
	CipherCompatibility int
	Binary              string
}

func NewSQLCipher(r command.Runner, path, password string, cipherCompat int) *SQLCipher {
	if cipherCompat == 0 {
		cipherCompat = DefaultCipherCompatibility
	}
	return &SQLCipher{Runner: r, Path: path, Password: password, CipherCompatibility: cipherCompat, Binary: "sqlcipher"}
}

func (g *SQLCipher) args() []string {
	key := strings.ReplaceAll(g.Password, "'", "''")
	return []string{
		g.Path,
		"-cmd", ".output /dev/null",
		"-cmd", fmt.Sprintf("PRAGMA key='%s'", key),
		"-cmd", fmt.Sprintf("PRAGMA cipher_compatibility=%d", g.CipherCompatibility),
		"-cmd", ".mode json",
		"-cmd", ".output",
	}
}

func (g *SQLCipher) Query(ctx context.Context, sql string) ([]Row, error) {
	bin := g.Binary
	if bin == "" {
		bin = "sqlcipher"
	}
	log := logger.FromContext(ctx)
	log.Debug().Str("tool", bin).Str("db", g.Path).Msg("running query")

	res, err := g.Runner.Run(ctx, bin, g.args(), []byte(sql))
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		diag := res.Diagnostic()
		if strings.Contains(diag, "file is not a database") || strings.Contains(diag, "not a db") {
			return nil, fmt.Errorf("%w: failed to open database. Check that the password is correct, "+
				"the cipher compatibility matches and the database path is valid (%s)", ErrAuthenticationFailed, diag)
		}
		return nil, fmt.Errorf("%w: sqlcipher error: %s", ErrQueryFailed, diag)
	}
	return decodeRows(res.Stdout)
}

func decodeRows(out []byte) ([]Row, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return []Row{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode sqlcipher output: %v", ErrQueryFailed, err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}
