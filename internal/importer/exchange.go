package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/mm2ledger/internal/moneymoney"
)

var exchangeHeader = []string{"UUID", "date", "payee", "amount", "note", "account"}

func init() {
	// The note carries amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// SyntheticID is the UUID ledger uses to recognise an already imported transaction.
func SyntheticID(txID int64) string {
	return fmt.Sprintf("M-%d", txID)
}

// WriteExchange writes txs as the CSV ledger convert reads: one row per
// transaction, the full transaction as JSON in the note column.
func WriteExchange(w io.Writer, txs []moneymoney.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exchangeHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		note, err := noteJSON(tx)
		if err != nil {
			return fmt.Errorf("encode transaction %d: %w", tx.TransactionID, err)
		}
		rec := []string{
			SyntheticID(tx.TransactionID),
			tx.ValueDate,
			tx.Name,
			tx.Currency + " " + tx.Amount.String(),
			" " + note,
			"",
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func noteJSON(tx moneymoney.Transaction) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tx); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// writeExchangeFile writes txs to a new uniquely named CSV in dir and returns
// its path. The caller removes it.
func writeExchangeFile(dir string, txs []moneymoney.Transaction) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "mm2ledger-"+uuid.NewString()+".csv")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create exchange file: %w", err)
	}
	if err := WriteExchange(f, txs); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write exchange file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
