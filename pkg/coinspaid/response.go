package coinspaid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var errTrailingData = errors.New("unexpected data after response body")

type statusAction int

const (
	// decode the body as the result; a decode failure is a hard error
	actionDecode statusAction = iota
	// read the body as text, then decode; failures keep the raw text
	actionDecodeText
	// fail without reading the body
	actionFail
	// fail with the body text attached
	actionFailWithBody
)

type statusRule struct {
	action statusAction
	kind   ErrorKind
}

var statusTable = map[int]statusRule{
	http.StatusOK:                  {action: actionDecode},
	http.StatusCreated:             {action: actionDecodeText},
	http.StatusInternalServerError: {action: actionFail, kind: KindInternalServer},
	http.StatusServiceUnavailable:  {action: actionFail, kind: KindServiceUnavailable},
	http.StatusUnauthorized:        {action: actionFail, kind: KindUnauthorized},
	http.StatusBadRequest:          {action: actionFailWithBody, kind: KindBadRequest},
}

var unexpectedStatusRule = statusRule{action: actionFailWithBody, kind: KindUnexpectedStatus}

func ruleFor(status int) statusRule {
	if rule, ok := statusTable[status]; ok {
		return rule
	}
	return unexpectedStatusRule
}

// handleResponse maps a gateway response onto out or an *Error.
// requestBody is attached to bad request errors.
func handleResponse(resp *http.Response, endpoint Endpoint, requestBody []byte, out any) error {
	rule := ruleFor(resp.StatusCode)

	switch rule.action {
	case actionDecode:
		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(out); err != nil {
			return &Error{Kind: KindDecode, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
		}
		if err := expectEOF(dec); err != nil {
			return &Error{Kind: KindDecode, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
		}
		return nil

	case actionDecodeText:
		text, err := readBody(resp, endpoint)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(text, out); err != nil {
			return &Error{Kind: KindDecode, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(text), Err: err}
		}
		return nil

	case actionFail:
		return &Error{Kind: rule.kind, Endpoint: endpoint, StatusCode: resp.StatusCode}

	default:
		text, err := readBody(resp, endpoint)
		if err != nil {
			return err
		}
		gwErr := &Error{Kind: rule.kind, Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(text)}
		if rule.kind == KindBadRequest {
			gwErr.RequestBody = string(requestBody)
		}
		return gwErr
	}
}

// expectEOF fails if anything but whitespace follows the decoded value
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

func readBody(resp *http.Response, endpoint Endpoint) ([]byte, error) {
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:       KindTransport,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}
	return text, nil
}
