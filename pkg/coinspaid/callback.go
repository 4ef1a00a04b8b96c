package coinspaid

import (
	"encoding/json"
	"errors"
)

var errIncompleteCallback = errors.New("callback has no id or status")

// CallbackData is the payment status notification posted by the gateway
type CallbackData struct {
	ID               int64            `json:"id"`
	ForeignID        *string          `json:"foreign_id"`
	Type             string           `json:"type"`
	CryptoAddress    *DepositAddress  `json:"crypto_address,omitempty"`
	Error            string           `json:"error"`
	Status           string           `json:"status"`
	CurrencySent     CurrencySent     `json:"currency_sent"`
	CurrencyReceived CurrencyReceived `json:"currency_received"`
	Transactions     []Transaction    `json:"transactions"`
	Fees             []Fee            `json:"fees"`
}

// ResolvedForeignID returns the callback foreign id, falling back to the
// foreign id of the embedded crypto address.
func (c *CallbackData) ResolvedForeignID() (string, bool) {
	if c.ForeignID != nil {
		return *c.ForeignID, true
	}
	if c.CryptoAddress != nil && c.CryptoAddress.ForeignID != nil {
		return *c.CryptoAddress.ForeignID, true
	}
	return "", false
}

// TransactionStatus parses the callback status
func (c *CallbackData) TransactionStatus() (TransactionStatus, error) {
	return ParseTransactionStatus(c.Status)
}

// Direction parses the callback type
func (c *CallbackData) Direction() (TransactionDirection, error) {
	return ParseTransactionDirection(c.Type)
}

// ParseCallback decodes a callback body. A callback without an operation id
// or status is rejected.
func ParseCallback(body []byte) (*CallbackData, error) {
	var cb CallbackData
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, &Error{Kind: KindDecode, Body: string(body), Err: err}
	}
	if cb.ID == 0 || cb.Status == "" {
		return nil, &Error{Kind: KindDecode, Body: string(body), Err: errIncompleteCallback}
	}
	return &cb, nil
}
