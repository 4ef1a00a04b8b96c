package coinspaid

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func syntheticResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestHandleResponse_StatusDispatch(t *testing.T) {
	const requestBody = `{"currency":"BTC"}`

	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantBody    string
		wantRequest string
	}{
		{name: "OK", status: http.StatusOK, body: `{"data":[]}`},
		{name: "Created", status: http.StatusCreated, body: `{"data":[]}`},
		{name: "OKMalformed", status: http.StatusOK, body: `{"data":`, wantErr: ErrDecode},
		{name: "OKTrailingNewline", status: http.StatusOK, body: "{\"data\":[]}\n"},
		{name: "OKEmptyObject", status: http.StatusOK, body: `{}`, wantErr: ErrDecode},
		{name: "OKNull", status: http.StatusOK, body: `null`, wantErr: ErrDecode},
		{name: "OKNullData", status: http.StatusOK, body: `{"data":null}`, wantErr: ErrDecode},
		{name: "OKTrailingGarbage", status: http.StatusOK, body: `{"data":[]} trailing-garbage`, wantErr: ErrDecode},
		{name: "OKTwoValues", status: http.StatusOK, body: `{"data":[]}{"data":[]}`, wantErr: ErrDecode},
		{name: "CreatedEmptyObject", status: http.StatusCreated, body: `{}`, wantErr: ErrDecode, wantBody: `{}`},
		{name: "CreatedTrailingGarbage", status: http.StatusCreated, body: `{"data":[]} x`, wantErr: ErrDecode, wantBody: `{"data":[]} x`},
		{name: "CreatedMalformed", status: http.StatusCreated, body: `<html>busy</html>`, wantErr: ErrDecode, wantBody: `<html>busy</html>`},
		{name: "BadRequest", status: http.StatusBadRequest, body: `{"errors":{"currency":"invalid"}}`, wantErr: ErrBadRequest,
			wantBody: `{"errors":{"currency":"invalid"}}`, wantRequest: requestBody},
		{name: "Unauthorized", status: http.StatusUnauthorized, body: `ignored`, wantErr: ErrUnauthorized},
		{name: "InternalServerError", status: http.StatusInternalServerError, body: `ignored`, wantErr: ErrInternalServer},
		{name: "ServiceUnavailable", status: http.StatusServiceUnavailable, body: `ignored`, wantErr: ErrServiceUnavailable},
		{name: "Other", status: http.StatusTeapot, body: `short and stout`, wantErr: ErrUnexpectedStatus, wantBody: `short and stout`},
		{name: "Forbidden", status: http.StatusForbidden, body: `{"error":"ip"}`, wantErr: ErrUnexpectedStatus, wantBody: `{"error":"ip"}`},
		{name: "NoContent", status: http.StatusNoContent, body: ``, wantErr: ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out GetAccountBalancesResponse
			err := handleResponse(syntheticResponse(tt.status, tt.body), EndpointAccountBalances, []byte(requestBody), &out)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, out.Data)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			var gwErr *Error
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.status, gwErr.StatusCode)
			assert.Equal(t, tt.wantBody, gwErr.Body)
			assert.Equal(t, tt.wantRequest, gwErr.RequestBody)
			assert.Equal(t, EndpointAccountBalances, gwErr.Endpoint)
		})
	}
}

func TestHandleResponse_DecodeAsymmetry(t *testing.T) {
	var out GetAccountBalancesResponse

	err := handleResponse(syntheticResponse(http.StatusOK, `not json`), EndpointAccountBalances, nil, &out)
	var okErr *Error
	require.ErrorAs(t, err, &okErr)
	assert.Empty(t, okErr.Body)
	assert.Error(t, okErr.Err)

	err = handleResponse(syntheticResponse(http.StatusCreated, `not json`), EndpointAccountBalances, nil, &out)
	var createdErr *Error
	require.ErrorAs(t, err, &createdErr)
	assert.Equal(t, "not json", createdErr.Body)
	assert.Error(t, createdErr.Err)
	assert.Contains(t, createdErr.Error(), "not json")
}

func TestHandleResponse_ReadFailure(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadRequest, Body: io.NopCloser(failingReader{})}

	err := handleResponse(resp, EndpointCryptoWithdrawal, nil, &struct{}{})

	require.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRuleFor_Total(t *testing.T) {
	for status := 100; status < 600; status++ {
		rule := ruleFor(status)
		switch status {
		case http.StatusOK:
			assert.Equal(t, actionDecode, rule.action)
		case http.StatusCreated:
			assert.Equal(t, actionDecodeText, rule.action)
		case http.StatusBadRequest:
			assert.Equal(t, statusRule{action: actionFailWithBody, kind: KindBadRequest}, rule)
		case http.StatusUnauthorized:
			assert.Equal(t, statusRule{action: actionFail, kind: KindUnauthorized}, rule)
		case http.StatusInternalServerError:
			assert.Equal(t, statusRule{action: actionFail, kind: KindInternalServer}, rule)
		case http.StatusServiceUnavailable:
			assert.Equal(t, statusRule{action: actionFail, kind: KindServiceUnavailable}, rule)
		default:
			assert.Equal(t, unexpectedStatusRule, rule, "status %d", status)
		}
	}
}

func TestError_Messages(t *testing.T) {
	err := &Error{Kind: KindUnexpectedStatus, Endpoint: EndpointPing, StatusCode: 418, Body: "teapot"}
	assert.Equal(t, `ping: received response code 418: "teapot"`, err.Error())

	err = &Error{Kind: KindUnauthorized, Endpoint: EndpointAccountBalances, StatusCode: 401}
	assert.Equal(t, "account_balances: unauthorized", err.Error())

	err = &Error{Kind: KindBadRequest, Endpoint: EndpointTakeAddress, RequestBody: "{}", Body: "nope"}
	assert.Equal(t, `take_address: received bad request status. Request: "{}". Response: "nope"`, err.Error())

	assert.False(t, errors.Is(err, ErrUnauthorized))
}
