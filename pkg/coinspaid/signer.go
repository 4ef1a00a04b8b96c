package coinspaid

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Signer computes request signatures with the merchant private key
type Signer struct {
	privateKey []byte
}

// NewSigner creates a signer for the given private key
func NewSigner(privateKey string) (*Signer, error) {
	if privateKey == "" {
		return nil, ErrEmptyKey
	}
	return &Signer{privateKey: []byte(privateKey)}, nil
}

// Sign returns the lowercase hex HMAC-SHA512 of message
func (s *Signer) Sign(message []byte) string {
	return hex.EncodeToString(s.mac(message))
}

// Verify reports whether signature is the hex HMAC-SHA512 of message.
// Comparison is constant time.
func (s *Signer) Verify(message []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(message))
}

func (s *Signer) mac(message []byte) []byte {
	h := hmac.New(sha512.New, s.privateKey)
	h.Write(message)
	return h.Sum(nil)
}
