package moneymoney

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

const listAccountsSQL = "SELECT rowid, name, currency, iban, bic FROM accounts;"

const tableInfoSQL = "PRAGMA table_info(transactions);"

// MoneyMoney names user-defined fields "a" followed by a creation timestamp.
var purposeColumnRe = regexp.MustCompile(`^a\d+$`)

// Client reads MoneyMoney data through a Gateway.
type Client struct {
	gw Gateway
}

func NewClient(gw Gateway) *Client {
	return &Client{gw: gw}
}

// ListAccounts returns every account in the database.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := c.gw.Query(ctx, listAccountsSQL)
	if err != nil {
		return nil, err
	}
	return decodeInto[Account](rows)
}

// DiscoverPurposeColumn finds the dynamically named purpose column of the
// transactions table. See PurposeColumn for the selection rule.
func (c *Client) DiscoverPurposeColumn(ctx context.Context) (string, bool, error) {
	names, err := c.transactionColumns(ctx)
	if err != nil {
		return "", false, err
	}
	col, ok := PurposeColumn(names)
	return col, ok, nil
}

// PurposeColumnCandidates returns every dynamic column of the transactions table.
func (c *Client) PurposeColumnCandidates(ctx context.Context) ([]string, error) {
	names, err := c.transactionColumns(ctx)
	if err != nil {
		return nil, err
	}
	return PurposeColumns(names), nil
}

func (c *Client) transactionColumns(ctx context.Context) ([]string, error) {
	rows, err := c.gw.Query(ctx, tableInfoSQL)
	if err != nil {
		return nil, err
	}
	cols, err := decodeInto[column](rows)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	return names, nil
}

// PurposeColumns filters names down to dynamic columns, keeping their order.
func PurposeColumns(names []string) []string {
	var out []string
	for _, n := range names {
		if purposeColumnRe.MatchString(n) {
			out = append(out, n)
		}
	}
	return out
}

// PurposeColumn picks the purpose column from the table's column names. With
// several candidates the first in table order wins; this is a guess, the
// config command lets the operator override it.
func PurposeColumn(names []string) (string, bool) {
	cols := PurposeColumns(names)
	if len(cols) == 0 {
		return "", false
	}
	return cols[0], true
}

// Transactions returns the booked transactions of accountID whose value date
// is on or after startDate, ordered by transaction id. purposeColumn may be
// empty.
func (c *Client) Transactions(ctx context.Context, accountID int64, startDate, purposeColumn string) ([]Transaction, error) {
	sql, err := TransactionsSQL(accountID, startDate, purposeColumn)
	if err != nil {
		return nil, err
	}
	rows, err := c.gw.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return decodeInto[Transaction](rows)
}

// TransactionsSQL renders the fetch query. Everything substituted into the
// text is validated first.
func TransactionsSQL(accountID int64, startDate, purposeColumn string) (string, error) {
	if _, err := time.Parse(time.DateOnly, startDate); err != nil {
		return "", fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidQuery, startDate)
	}
	purposeSelect := ""
	if purposeColumn != "" {
		if !purposeColumnRe.MatchString(purposeColumn) {
			return "", fmt.Errorf("%w: purpose column %q does not look like a MoneyMoney field", ErrInvalidQuery, purposeColumn)
		}
		purposeSelect = fmt.Sprintf(", t.%s as purpose", purposeColumn)
	}
	return fmt.Sprintf(`SELECT
    t.rowid as transaction_id,
    date(timestamp, 'unixepoch') as booking_date,
    date(value_timestamp, 'unixepoch') as value_date,
    t.amount,
    t.currency,
    t.eref,
    t.mref,
    t.kref,
    t.cred,
    t.unformatted_type as type,
    t.name as name%s,
    a.rowid as account_id,
    a.bic,
    a.iban,
    a.name as account_name
FROM
    transactions t, accounts a
WHERE
    t.local_account_key = a.rowid
    AND booked = 1
    AND a.rowid = %d
    AND date(value_timestamp, 'unixepoch') >= '%s'
ORDER BY
    transaction_id ASC;`, purposeSelect, accountID, startDate), nil
}
