package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "mm2ledger config")
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	data := `
[database]
path = "/data/MoneyMoney.sqlite"

[[accounts]]
id = 4
mm_name = "Giro"
currency = "EUR"
ledger_account = "Assets:Giro"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/MoneyMoney.sqlite", c.Database.Path)
	require.Equal(t, DefaultPasswordSource, c.Database.PasswordSource)
	require.Equal(t, DefaultCipherCompatibility, c.Database.CipherCompatibility)
	require.Equal(t, BackendSQLCipher, c.Database.Backend)
	require.Equal(t, DefaultLedgerDir, c.Ledger.Dir)
	require.Equal(t, DefaultRulesFile, c.Ledger.RulesFile)
	require.Empty(t, c.PurposeColumn())

	require.Len(t, c.Accounts, 1)
	a := c.Accounts[0]
	require.Equal(t, int64(4), a.ID)
	require.Equal(t, "Assets_Giro.journal", a.JournalFile)
	require.Equal(t, DefaultStartDate, a.StartDate)
	require.False(t, a.Enabled)
	require.Nil(t, a.IBAN)
}

func TestLoadNativeTOMLDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	data := `
[database]
path = "/data/MoneyMoney.sqlite"

[[accounts]]
id = 1
ledger_account = "Assets:Giro"
start_date = 2024-03-01

[[accounts]]
id = 2
ledger_account = "Assets:Visa"
start_date = 2024-04-15T08:30:00Z

[[accounts]]
id = 3
ledger_account = "Assets:Cash"
start_date = "2023-12-31"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "2024-03-01", c.Accounts[0].StartDate)
	require.Equal(t, "2024-04-15", c.Accounts[1].StartDate)
	require.Equal(t, "2023-12-31", c.Accounts[2].StartDate)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Save(path, Default()))

	t.Setenv("MM2LEDGER_DATABASE_PATH", "/env/db.sqlite")
	t.Setenv("MM2LEDGER_LEDGER_DIR", "/env/ledger")
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/env/db.sqlite", c.Database.Path)
	require.Equal(t, "/env/ledger", c.Ledger.Dir)
}

func TestLoadRejectsBadAccounts(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"missing ledger": "[[accounts]]\nid = 1\n",
		"missing id":     "[[accounts]]\nledger_account = \"Assets:X\"\n",
		"duplicate id":   "[[accounts]]\nid = 1\nledger_account = \"A\"\n[[accounts]]\nid = 1\nledger_account = \"B\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	c := Default()
	c.Database.Path = "/db/MoneyMoney.sqlite"
	c.Database.PasswordSource = "op://Private/MoneyMoney/password"
	c.Ledger.Dir = "/books"
	c.SetPurposeColumn("a1717838516")
	c.Accounts = []AccountConfig{
		{ID: 1, MMName: "Giro", Currency: "EUR", LedgerAccount: "Assets:Giro", JournalFile: "Assets_Giro.journal", StartDate: "2024-03-01", Enabled: true, IBAN: strp("DE02"), BIC: strp("BYLA")},
		{ID: 2, MMName: "Karte", Currency: "EUR", LedgerAccount: "Liabilities:Karte", JournalFile: "Liabilities_Karte.journal", StartDate: DefaultStartDate},
	}
	require.NoError(t, Save(path, c))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "[[accounts]]")
	require.Contains(t, string(raw), `purpose_column = "a1717838516"`)
	require.NotContains(t, string(raw), `iban = ""`)

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, c, got)
	require.Equal(t, "/books/Assets_Giro.journal", got.JournalPath(got.Accounts[0]))
	require.Equal(t, "/books/rules.journal", got.RulesPath())
	require.Len(t, got.Enabled(), 1)

	got.SetPurposeColumn("")
	require.Nil(t, got.Schema)
}
