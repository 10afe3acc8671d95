package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountLookup(t *testing.T) {
	c := Default()
	c.Accounts = []AccountConfig{
		{ID: 1, LedgerAccount: "Assets:Giro", Enabled: true},
		{ID: 2, LedgerAccount: "Liabilities:Visa"},
	}

	a, err := c.Account("Liabilities:Visa")
	require.NoError(t, err)
	require.Equal(t, int64(2), a.ID)

	_, err = c.Account("Assets:Gyro")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "Available accounts: Assets:Giro")
	require.Contains(t, err.Error(), "Did you mean Assets:Giro?")

	_, err = c.Account("Expenses:Food")
	require.ErrorIs(t, err, ErrNotFound)
	require.NotContains(t, err.Error(), "Did you mean")

	empty := Default()
	_, err = empty.Account("Assets:Giro")
	require.Contains(t, err.Error(), "(none enabled)")
}

func TestConnection(t *testing.T) {
	c := Default()
	c.Database.Path = "/db"
	conn := c.Connection("pw")
	require.Equal(t, "/db", conn.Path)
	require.Equal(t, "pw", conn.Password)
	require.Equal(t, BackendSQLCipher, conn.Backend)
	require.Equal(t, DefaultCipherCompatibility, conn.CipherCompatibility)
}
