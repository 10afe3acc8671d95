package moneymoney

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/mm2ledger/internal/command"
)

func TestOpenMissingDatabase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "MoneyMoney.sqlite")

	for _, backend := range []string{BackendSQLCipher, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			runner := command.NewFake()
			_, _, err := Open(runner, Connection{Backend: backend, Path: missing, Password: "pw"})
			require.ErrorIs(t, err, ErrNotFound)
			require.NotErrorIs(t, err, ErrAuthenticationFailed)
			require.Contains(t, err.Error(), missing)
			require.Empty(t, runner.Calls)
		})
	}
}

func TestOpenSQLiteRejectsDirectory(t *testing.T) {
	_, err := OpenSQLite(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenSQLCipherExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MoneyMoney.sqlite")
	require.NoError(t, os.WriteFile(path, []byte("encrypted"), 0o600))

	c, closeFn, err := Open(command.NewFake(), Connection{Path: path, Password: "pw", CipherCompatibility: 4})
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NoError(t, closeFn())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := Open(command.NewFake(), Connection{Backend: "mysql", Path: "x"})
	require.ErrorContains(t, err, "unknown database backend")
}
