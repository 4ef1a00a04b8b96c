package coinspaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Header names of the gateway authentication contract
const (
	HeaderKey       = "X-Processing-Key"
	HeaderSignature = "X-Processing-Signature"
)

var emptyBody = []byte("{}")

// Client is a CoinsPaid gateway API client. It is safe for concurrent use.
type Client struct {
	host       string
	publicKey  string
	signer     *Signer
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures optional client dependencies
type Option func(*Client)

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every gateway call in m
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new CoinsPaid API client
func NewClient(config *ClientConfig, opts ...Option) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return NewClientWithHTTPClient(config, &http.Client{Timeout: timeout}, opts...)
}

// NewClientWithHTTPClient creates a new CoinsPaid API client with a custom HTTP client
func NewClientWithHTTPClient(config *ClientConfig, httpClient *http.Client, opts ...Option) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	signer, err := NewSigner(config.PrivateKey)
	if err != nil {
		return nil, err
	}

	c := &Client{
		host:       config.host(),
		publicKey:  config.PublicKey,
		signer:     signer,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// TakeAddress allocates a deposit address for foreignID.
// convertTo optionally requests conversion of incoming funds.
func (c *Client) TakeAddress(ctx context.Context, currency, foreignID string, convertTo *string) (*Address, error) {
	req := &TakeAddressRequest{
		Currency:  currency,
		ForeignID: foreignID,
		ConvertTo: convertTo,
	}

	var resp TakeAddressResponse
	if err := c.postJSON(ctx, EndpointTakeAddress, req, &resp); err != nil {
		return nil, err
	}

	return &resp.Data, nil
}

// WithdrawCrypto sends amount of currency to address.
// tag is the destination tag or memo for currencies that need one.
func (c *Client) WithdrawCrypto(ctx context.Context, address, currency, foreignID, amount string, tag *string) (*Withdrawal, error) {
	req := &WithdrawCryptoRequest{
		ForeignID: foreignID,
		Amount:    amount,
		Currency:  currency,
		Address:   address,
		Tag:       tag,
	}

	var resp WithdrawCryptoResponse
	if err := c.postJSON(ctx, EndpointCryptoWithdrawal, req, &resp); err != nil {
		return nil, err
	}

	return &resp.Data, nil
}

// GetBalances lists the merchant account balances
func (c *Client) GetBalances(ctx context.Context) ([]AccountBalance, error) {
	var resp GetAccountBalancesResponse
	if err := c.PostSigned(ctx, EndpointAccountBalances, emptyBody, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// Ping checks gateway availability and returns the raw reply
func (c *Client) Ping(ctx context.Context) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.Get(ctx, EndpointPing, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint Endpoint, reqBody any, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &Error{Kind: KindSerialization, Endpoint: endpoint, Err: err}
	}

	return c.PostSigned(ctx, endpoint, body, out)
}

// PostSigned signs body, POSTs it to endpoint and decodes the reply into out.
// The signed bytes are the bytes sent.
func (c *Client) PostSigned(ctx context.Context, endpoint Endpoint, body []byte, out any) error {
	signature := c.signer.Sign(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpoint), bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	c.setHeaders(req, signature)

	return c.do(req, endpoint, body, out)
}

// Get sends an unsigned GET to endpoint and decodes the reply into out
func (c *Client) Get(ctx context.Context, endpoint Endpoint, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(endpoint), nil)
	if err != nil {
		return &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	c.setHeaders(req, "")

	return c.do(req, endpoint, nil, out)
}

func (c *Client) url(endpoint Endpoint) string {
	return c.host + endpoint.Path()
}

func (c *Client) setHeaders(req *http.Request, signature string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderKey, c.publicKey)
	if signature != "" {
		req.Header.Set(HeaderSignature, signature)
	}
}

func (c *Client) do(req *http.Request, endpoint Endpoint, requestBody []byte, out any) error {
	c.logger.Debug("gateway request",
		"endpoint", endpoint.String(),
		"method", req.Method,
		"url", req.URL.String())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(start))
		return &Error{Kind: KindTransport, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	err = handleResponse(resp, endpoint, requestBody, out)
	c.metrics.observe(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		c.logger.Warn("gateway request failed",
			"endpoint", endpoint.String(),
			"status", resp.StatusCode,
			"error", err)
	}

	return err
}
