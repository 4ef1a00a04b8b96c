package coinspaid

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var errMissingData = errors.New("response has no data")

// decodeData unmarshals the data member of a response envelope into dst.
// A missing or null data member is an error.
func decodeData(b []byte, dst any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return errMissingData
	}
	return json.Unmarshal(envelope.Data, dst)
}

// TakeAddressRequest is the request body for /api/v2/addresses/take
type TakeAddressRequest struct {
	Currency  string  `json:"currency"`
	ForeignID string  `json:"foreign_id"`
	ConvertTo *string `json:"convert_to,omitempty"`
}

// TakeAddressResponse is the response of /api/v2/addresses/take
type TakeAddressResponse struct {
	Data Address `json:"data"`
}

func (r *TakeAddressResponse) UnmarshalJSON(b []byte) error {
	return decodeData(b, &r.Data)
}

// Address is a deposit address allocated to a foreign id
type Address struct {
	ID        int64   `json:"id"`
	Currency  string  `json:"currency"`
	ConvertTo *string `json:"convert_to"`
	Address   string  `json:"address"`
	Tag       *int64  `json:"tag"`
	ForeignID *string `json:"foreign_id"`
}

// WithdrawCryptoRequest is the request body for /api/v2/withdrawal/crypto
type WithdrawCryptoRequest struct {
	ForeignID string  `json:"foreign_id"`
	Amount    string  `json:"amount"`
	Currency  string  `json:"currency"`
	Address   string  `json:"address"`
	Tag       *string `json:"tag,omitempty"`
}

// WithdrawCryptoResponse is the response of /api/v2/withdrawal/crypto
type WithdrawCryptoResponse struct {
	Data Withdrawal `json:"data"`
}

func (r *WithdrawCryptoResponse) UnmarshalJSON(b []byte) error {
	return decodeData(b, &r.Data)
}

// Withdrawal is a crypto withdrawal accepted by the gateway
type Withdrawal struct {
	ID               int64  `json:"id"`
	ForeignID        string `json:"foreign_id"`
	Type             string `json:"type"`
	Status           string `json:"status"`
	SenderAmount     string `json:"sender_amount"`
	SenderCurrency   string `json:"sender_currency"`
	ReceiverAmount   string `json:"receiver_amount"`
	ReceiverCurrency string `json:"receiver_currency"`
}

// SenderDecimal parses the sender amount
func (w *Withdrawal) SenderDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(w.SenderAmount)
}

// ReceiverDecimal parses the receiver amount
func (w *Withdrawal) ReceiverDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(w.ReceiverAmount)
}

// GetAccountBalancesResponse is the response of /api/v2/accounts/list
type GetAccountBalancesResponse struct {
	Data []AccountBalance `json:"data"`
}

func (r *GetAccountBalancesResponse) UnmarshalJSON(b []byte) error {
	return decodeData(b, &r.Data)
}

// AccountBalance is the balance of one merchant account
type AccountBalance struct {
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// Amount parses the balance
func (b AccountBalance) Amount() (decimal.Decimal, error) {
	return decimal.NewFromString(b.Balance)
}

// DepositAddress is the address record embedded in a callback
type DepositAddress struct {
	ID        int64   `json:"id"`
	Currency  string  `json:"currency"`
	Address   string  `json:"address"`
	Tag       *string `json:"tag"`
	ForeignID *string `json:"foreign_id"`
}

// CurrencySent is the amount that left the sender
type CurrencySent struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// CurrencyReceived is the amount credited to the receiver
type CurrencyReceived struct {
	Currency       string  `json:"currency"`
	Amount         string  `json:"amount"`
	AmountMinusFee *string `json:"amount_minus_fee"`
}

// AmountMinusFeeDecimal parses the net amount. ok is false when the gateway
// did not report one.
func (c CurrencyReceived) AmountMinusFeeDecimal() (d decimal.Decimal, ok bool, err error) {
	if c.AmountMinusFee == nil {
		return decimal.Zero, false, nil
	}
	d, err = decimal.NewFromString(*c.AmountMinusFee)
	return d, err == nil, err
}

// Transaction is an underlying chain transaction of a callback
type Transaction struct {
	ID              int64   `json:"id"`
	Currency        string  `json:"currency"`
	TransactionType string  `json:"transaction_type"`
	Type            string  `json:"type"`
	Tag             *string `json:"tag,omitempty"`
	Amount          string  `json:"amount"`
	TxID            *string `json:"txid"`
	RiskScore       *string `json:"riskscore"`
	Confirmations   string  `json:"confirmations"`
}

// Kind parses transaction_type
func (t Transaction) Kind() (TransactionKind, error) {
	return ParseTransactionKind(t.TransactionType)
}

// Direction parses type
func (t Transaction) Direction() (TransactionDirection, error) {
	return ParseTransactionDirection(t.Type)
}

// Fee is a fee applied by the gateway
type Fee struct {
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// Decimal parses the fee amount
func (f Fee) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(f.Amount)
}
