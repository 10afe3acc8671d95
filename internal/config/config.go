package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/jask/mm2ledger/internal/moneymoney"
)

const (
	DefaultFile                = "mm2ledger.toml"
	DefaultPasswordSource      = "env:MM_DB_PASSWORD"
	DefaultCipherCompatibility = 4
	DefaultStartDate           = "2024-01-01"
	DefaultLedgerDir           = "./ledger"
	DefaultRulesFile           = "rules.journal"
	DefaultBackend             = BackendSQLCipher

	BackendSQLCipher = moneymoney.BackendSQLCipher
	BackendSQLite    = moneymoney.BackendSQLite
)

// ErrNotFound is returned for a missing config file, an unknown account or a
// missing database.
var ErrNotFound = moneymoney.ErrNotFound

// Config is the mm2ledger.toml file.
type Config struct {
	Database DatabaseConfig  `mapstructure:"database" toml:"database"`
	Ledger   LedgerConfig    `mapstructure:"ledger" toml:"ledger"`
	Schema   *SchemaConfig   `mapstructure:"schema" toml:"schema,omitempty"`
	Accounts []AccountConfig `mapstructure:"accounts" toml:"accounts"`
}

// DatabaseConfig locates and unlocks the MoneyMoney database.
type DatabaseConfig struct {
	Path                string `mapstructure:"path" toml:"path"`
	PasswordSource      string `mapstructure:"password_source" toml:"password_source"`
	CipherCompatibility int    `mapstructure:"cipher_compatibility" toml:"cipher_compatibility"`
	// Backend is "sqlcipher" (default) or "sqlite" for an unencrypted copy.
	Backend string `mapstructure:"backend" toml:"backend,omitempty"`
}

// LedgerConfig is where journals are written.
type LedgerConfig struct {
	Dir       string `mapstructure:"dir" toml:"dir"`
	RulesFile string `mapstructure:"rules_file" toml:"rules_file"`
}

// SchemaConfig overrides schema discovery.
type SchemaConfig struct {
	PurposeColumn string `mapstructure:"purpose_column" toml:"purpose_column,omitempty"`
}

// AccountConfig is one account to import. MMName, Currency, IBAN and BIC
// mirror the database; the rest belongs to the user.
type AccountConfig struct {
	ID            int64   `mapstructure:"id" toml:"id"`
	MMName        string  `mapstructure:"mm_name" toml:"mm_name"`
	Currency      string  `mapstructure:"currency" toml:"currency"`
	LedgerAccount string  `mapstructure:"ledger_account" toml:"ledger_account"`
	JournalFile   string  `mapstructure:"journal_file" toml:"journal_file"`
	StartDate     string  `mapstructure:"start_date" toml:"start_date"`
	Enabled       bool    `mapstructure:"enabled" toml:"enabled"`
	IBAN          *string `mapstructure:"iban" toml:"iban,omitempty"`
	BIC           *string `mapstructure:"bic" toml:"bic,omitempty"`
}

// Default returns a config with every default applied and no accounts.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			PasswordSource:      DefaultPasswordSource,
			CipherCompatibility: DefaultCipherCompatibility,
			Backend:             DefaultBackend,
		},
		Ledger: LedgerConfig{Dir: DefaultLedgerDir, RulesFile: DefaultRulesFile},
	}
}

// PurposeColumn returns the configured purpose column, or "".
func (c Config) PurposeColumn() string {
	if c.Schema == nil {
		return ""
	}
	return c.Schema.PurposeColumn
}

// SetPurposeColumn sets or clears the schema override.
func (c *Config) SetPurposeColumn(col string) {
	if col == "" {
		c.Schema = nil
		return
	}
	c.Schema = &SchemaConfig{PurposeColumn: col}
}

// Enabled returns the enabled accounts in config order.
func (c Config) Enabled() []AccountConfig {
	var out []AccountConfig
	for _, a := range c.Accounts {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// JournalPath is the absolute-or-relative path of an account journal.
func (c Config) JournalPath(a AccountConfig) string {
	return filepath.Join(c.Ledger.Dir, a.JournalFile)
}

// RulesPath is the path of the shared rules journal.
func (c Config) RulesPath() string {
	return filepath.Join(c.Ledger.Dir, c.Ledger.RulesFile)
}

// Load reads path. Env vars with prefix MM2LEDGER_ override scalar keys,
// e.g. MM2LEDGER_DATABASE_PATH.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: config file %s.\nRun 'mm2ledger config' first", ErrNotFound, path)
		}
		return Config{}, err
	}

	v := viper.New()
	d := Default()
	v.SetDefault("database.path", "")
	v.SetDefault("database.password_source", d.Database.PasswordSource)
	v.SetDefault("database.cipher_compatibility", d.Database.CipherCompatibility)
	v.SetDefault("database.backend", d.Database.Backend)
	v.SetDefault("ledger.dir", d.Ledger.Dir)
	v.SetDefault("ledger.rules_file", d.Ledger.RulesFile)

	v.SetConfigType("toml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("MM2LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var c Config
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		dateStringHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&c, hooks); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.normalize(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// dateStringHook renders native TOML dates, as in start_date = 2024-03-01,
// into the ISO form string fields hold.
func dateStringHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch d := data.(type) {
	case gotoml.LocalDate:
		return d.String(), nil
	case gotoml.LocalDateTime:
		return d.LocalDate.String(), nil
	case time.Time:
		return d.Format(time.DateOnly), nil
	}
	return data, nil
}

func (c *Config) normalize() error {
	if c.Schema != nil && c.Schema.PurposeColumn == "" {
		c.Schema = nil
	}
	seen := map[int64]bool{}
	for i := range c.Accounts {
		a := &c.Accounts[i]
		if a.ID == 0 {
			return fmt.Errorf("account #%d: id is required", i+1)
		}
		if seen[a.ID] {
			return fmt.Errorf("account %d: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if a.LedgerAccount == "" {
			return fmt.Errorf("account %d: ledger_account is required", a.ID)
		}
		if a.JournalFile == "" {
			a.JournalFile = JournalFilename(a.LedgerAccount)
		}
		if a.StartDate == "" {
			a.StartDate = DefaultStartDate
		}
	}
	return nil
}

// Save writes c to path via a temp file and rename.
func Save(path string, c Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}
