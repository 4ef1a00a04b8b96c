package coinspaid

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRequests_RoundTrip(t *testing.T) {
	t.Run("TakeAddress", func(t *testing.T) {
		req := TakeAddressRequest{Currency: "BTC", ForeignID: "123456", ConvertTo: strPtr("EUR")}

		data, err := json.Marshal(req)
		require.NoError(t, err)

		var decoded TakeAddressRequest
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, req, decoded)
	})

	t.Run("WithdrawCrypto", func(t *testing.T) {
		req := WithdrawCryptoRequest{
			ForeignID: "6a6c5ee305814ecdb98e9a2fa9c44123",
			Amount:    "0.0003",
			Currency:  "BTC",
			Address:   "2Mxsqy9d6LuW2VYQPsojmPWXaRznMQ7Nifr",
			Tag:       strPtr("memo"),
		}

		data, err := json.Marshal(req)
		require.NoError(t, err)

		var decoded WithdrawCryptoRequest
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, req, decoded)
	})
}

func TestTakeAddressRequest_CanonicalBody(t *testing.T) {
	data, err := json.Marshal(TakeAddressRequest{Currency: "BTC", ForeignID: "123456"})
	require.NoError(t, err)

	assert.Equal(t, vectorMessage, string(data))
}

func TestTransaction_WireNames(t *testing.T) {
	body := `{
		"id": 7,
		"currency": "BTC",
		"transaction_type": "blockchain",
		"type": "deposit",
		"amount": "0.01",
		"txid": "abcdef",
		"riskscore": "0.2",
		"confirmations": "3"
	}`

	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(body), &tx))

	assert.Equal(t, int64(7), tx.ID)
	assert.Nil(t, tx.Tag)
	require.NotNil(t, tx.TxID)
	assert.Equal(t, "abcdef", *tx.TxID)
	require.NotNil(t, tx.RiskScore)
	assert.Equal(t, "0.2", *tx.RiskScore)

	kind, err := tx.Kind()
	require.NoError(t, err)
	assert.Equal(t, TransactionKindBlockchain, kind)

	direction, err := tx.Direction()
	require.NoError(t, err)
	assert.Equal(t, DirectionDeposit, direction)

	out, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"txid":"abcdef"`)
	assert.Contains(t, string(out), `"riskscore":"0.2"`)
	assert.NotContains(t, string(out), `"tag"`)
}

func TestDecimalAccessors(t *testing.T) {
	balance := AccountBalance{Type: "crypto", Currency: "BTC", Balance: "0.5"}
	amount, err := balance.Amount()
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("0.5")))

	_, err = AccountBalance{Balance: "lots"}.Amount()
	assert.Error(t, err)

	w := Withdrawal{SenderAmount: "0.0003", ReceiverAmount: "0.00029"}
	sent, err := w.SenderDecimal()
	require.NoError(t, err)
	received, err := w.ReceiverDecimal()
	require.NoError(t, err)
	assert.True(t, sent.GreaterThan(received))

	net, ok, err := CurrencyReceived{AmountMinusFee: strPtr("1.25")}.AmountMinusFeeDecimal()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.25", net.String())

	_, ok, err = CurrencyReceived{}.AmountMinusFeeDecimal()
	require.NoError(t, err)
	assert.False(t, ok)

	fee, err := Fee{Type: "fee_crypto_deposit", Currency: "BTC", Amount: "0.0001"}.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "0.0001", fee.String())
}
