package moneymoney

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

// Account is an account as stored in the MoneyMoney database.
type Account struct {
	ID       int64   `mapstructure:"rowid"`
	Name     string  `mapstructure:"name"`
	Currency string  `mapstructure:"currency"`
	IBAN     *string `mapstructure:"iban"`
	BIC      *string `mapstructure:"bic"`
}

// Transaction is one booked transaction joined with its owning account. The
// JSON form is what gets embedded in the journal note.
type Transaction struct {
	TransactionID int64           `mapstructure:"transaction_id" json:"transaction_id"`
	BookingDate   string          `mapstructure:"booking_date" json:"booking_date"`
	ValueDate     string          `mapstructure:"value_date" json:"value_date"`
	Amount        decimal.Decimal `mapstructure:"amount" json:"amount"`
	Currency      string          `mapstructure:"currency" json:"currency"`
	Eref          *string         `mapstructure:"eref" json:"eref"`
	Mref          *string         `mapstructure:"mref" json:"mref"`
	Kref          *string         `mapstructure:"kref" json:"kref"`
	Cred          *string         `mapstructure:"cred" json:"cred"`
	Type          *string         `mapstructure:"type" json:"type"`
	Name          string          `mapstructure:"name" json:"name"`
	Purpose       *string         `mapstructure:"purpose" json:"purpose,omitempty"`
	AccountID     int64           `mapstructure:"account_id" json:"account_id"`
	BIC           *string         `mapstructure:"bic" json:"bic"`
	IBAN          *string         `mapstructure:"iban" json:"iban"`
	AccountName   string          `mapstructure:"account_name" json:"account_name"`
}

// column is one entry of PRAGMA table_info.
type column struct {
	Name string `mapstructure:"name"`
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func amountHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return data, nil
}

func decodeInto[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, r := range rows {
		var v T
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       amountHook,
			WeaklyTypedInput: true,
			Result:           &v,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(map[string]any(r)); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrQueryFailed, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
