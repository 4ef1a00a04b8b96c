// Package coinspaid provides a client for the CoinsPaid payment gateway REST API.
//
// The gateway is used by merchants to allocate crypto deposit addresses, send
// crypto withdrawals and read account balances. Payment status changes are
// delivered asynchronously as callbacks, which this package can parse.
//
// # Authentication
//
// Every request carries the merchant public key in the X-Processing-Key header.
// Signed requests additionally carry X-Processing-Signature: the lowercase hex
// HMAC-SHA512 of the exact request body, keyed by the merchant private key.
// The body that is signed is the body that is sent; it is never re-encoded.
//
// # Basic Usage
//
//	cfg := coinspaid.SandboxConfig()
//	cfg.PublicKey = "your-public-key"
//	cfg.PrivateKey = "your-private-key"
//
//	client, err := coinspaid.NewClient(cfg)
//	if err != nil {
//	    return err
//	}
//
//	balances, err := client.GetBalances(ctx)
//
//	addr, err := client.TakeAddress(ctx, "BTC", "order-42", nil)
//
//	w, err := client.WithdrawCrypto(ctx, "2Mxsqy9d6LuW2VYQPsojmPWXaRznMQ7Nifr", "BTC", "payout-7", "0.0003", nil)
//
// # Error Handling
//
// Gateway outcomes other than success are returned as *Error. Match the kind
// with errors.Is and inspect the context with errors.As:
//
//	_, err := client.WithdrawCrypto(ctx, addr, "BTC", id, "1", nil)
//	switch {
//	case errors.Is(err, coinspaid.ErrUnauthorized):
//	    // keys rejected
//	case errors.Is(err, coinspaid.ErrBadRequest):
//	    var gwErr *coinspaid.Error
//	    errors.As(err, &gwErr)
//	    log.Printf("request %s rejected: %s", gwErr.RequestBody, gwErr.Body)
//	}
package coinspaid
