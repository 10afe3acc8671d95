// Package testdata builds unencrypted MoneyMoney-shaped databases for tests
// and demos.
package testdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// PurposeColumn is the dynamic column name Seed creates.
const PurposeColumn = "a1717838516"

const schema = `
CREATE TABLE accounts (
	name TEXT,
	currency TEXT,
	iban TEXT,
	bic TEXT
);
CREATE TABLE transactions (
	local_account_key INTEGER,
	timestamp INTEGER,
	value_timestamp INTEGER,
	amount REAL,
	currency TEXT,
	eref TEXT,
	mref TEXT,
	kref TEXT,
	cred TEXT,
	unformatted_type TEXT,
	name TEXT,
	booked INTEGER,
	` + PurposeColumn + ` TEXT
);`

// Account is a seed account row.
type Account struct {
	Name     string
	Currency string
	IBAN     string
	BIC      string
}

// Transaction is a seed transaction row. Dates are YYYY-MM-DD.
type Transaction struct {
	Account   int64
	Booking   string
	Value     string
	Amount    float64
	Currency  string
	Name      string
	Purpose   string
	Booked    bool
	EndToEnd  string
	TypeLabel string
}

// Data is the content Seed writes.
type Data struct {
	Accounts     []Account
	Transactions []Transaction
}

// Sample is a small database with two accounts and a mix of booked and
// pending transactions around 2024-01-01.
func Sample() Data {
	return Data{
		Accounts: []Account{
			{Name: "Giro", Currency: "EUR", IBAN: "DE02120300000000202051", BIC: "BYLADEM1001"},
			{Name: "Kreditkarte", Currency: "EUR"},
		},
		Transactions: []Transaction{
			{Account: 1, Booking: "2023-12-30", Value: "2023-12-31", Amount: -5, Currency: "EUR", Name: "Old Bakery", Booked: true},
			{Account: 1, Booking: "2024-02-01", Value: "2024-02-01", Amount: -12.5, Currency: "EUR", Name: "Supermarkt", Purpose: "Groceries", Booked: true, EndToEnd: "E2E-1", TypeLabel: "Lastschrift"},
			{Account: 1, Booking: "2024-02-02", Value: "2024-02-02", Amount: 2500, Currency: "EUR", Name: "ACME GmbH", Purpose: "Salary", Booked: true, TypeLabel: "Gutschrift"},
			{Account: 1, Booking: "2024-02-03", Value: "2024-02-03", Amount: -40, Currency: "EUR", Name: "Pending Shop", Booked: false},
			{Account: 2, Booking: "2024-02-05", Value: "2024-02-05", Amount: -99.99, Currency: "EUR", Name: "Airline", Booked: true},
		},
	}
}

// Seed creates the schema in db and inserts d. Accounts get rowids 1..n in order.
func Seed(ctx context.Context, db *sql.DB, d Data) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, a := range d.Accounts {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO accounts(name, currency, iban, bic) VALUES (?, ?, ?, ?)`,
			a.Name, a.Currency, nullable(a.IBAN), nullable(a.BIC)); err != nil {
			return fmt.Errorf("insert account %s: %w", a.Name, err)
		}
	}
	for _, t := range d.Transactions {
		booking, err := unix(t.Booking)
		if err != nil {
			return err
		}
		value, err := unix(t.Value)
		if err != nil {
			return err
		}
		booked := 0
		if t.Booked {
			booked = 1
		}
		if _, err := db.ExecContext(ctx, `
		INSERT INTO transactions(local_account_key, timestamp, value_timestamp, amount, currency,
			eref, unformatted_type, name, booked, `+PurposeColumn+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Account, booking, value, t.Amount, t.Currency,
			nullable(t.EndToEnd), nullable(t.TypeLabel), t.Name, booked, nullable(t.Purpose)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.Name, err)
		}
	}
	return nil
}

// Create writes a new database file at path seeded with d.
func Create(ctx context.Context, path string, d Data) error {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return err
	}
	defer db.Close()
	return Seed(ctx, db, d)
}

func unix(date string) (int64, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return 0, fmt.Errorf("seed date %q: %w", date, err)
	}
	return t.Unix(), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
