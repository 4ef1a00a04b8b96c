package coinspaid

import (
	"fmt"
	"strings"
	"time"
)

// Gateway hosts
const (
	ProductionHost = "https://app.alphapo.net"
	SandboxHost    = "https://app.sandbox.cryptoprocessing.com"
)

// ClientConfig holds the configuration for the CoinsPaid client
type ClientConfig struct {
	Host       string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

// DefaultConfig returns a configuration pointing at the production gateway
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Host:    ProductionHost,
		Timeout: 30 * time.Second,
	}
}

// SandboxConfig returns a configuration pointing at the sandbox gateway
func SandboxConfig() *ClientConfig {
	return &ClientConfig{
		Host:    SandboxHost,
		Timeout: 30 * time.Second,
	}
}

func (c *ClientConfig) validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.PublicKey == "" {
		return fmt.Errorf("%w: public key is required", ErrInvalidConfig)
	}
	return nil
}

func (c *ClientConfig) host() string {
	return strings.TrimRight(c.Host, "/")
}
