// Package limits bounds the amounts operators may withdraw per currency.
//
// Key Requirements:
//   - Each currency may have an inclusive minimum and maximum
//   - Currencies without a configured limit are unbounded
//   - Limits are fixed at startup from configuration
package limits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourfin-enon/coinspaid-connector/internal/config"
)

var (
	ErrBelowMinimum = errors.New("amount is below the withdrawal minimum")
	ErrAboveMaximum = errors.New("amount exceeds the withdrawal maximum")
	ErrInvalidLimit = errors.New("invalid limit value")
)

// Limit is the allowed range for one currency
type Limit struct {
	Min decimal.NullDecimal `json:"min"`
	Max decimal.NullDecimal `json:"max"`
}

// Service checks withdrawal amounts against configured limits
type Service struct {
	limits map[string]Limit
}

// New parses the configured limits
func New(cfg map[string]config.AmountLimit) (*Service, error) {
	s := &Service{limits: make(map[string]Limit, len(cfg))}

	for currency, l := range cfg {
		minBound, err := parseBound(l.Min)
		if err != nil {
			return nil, fmt.Errorf("%w: %s min %q", ErrInvalidLimit, currency, l.Min)
		}
		maxBound, err := parseBound(l.Max)
		if err != nil {
			return nil, fmt.Errorf("%w: %s max %q", ErrInvalidLimit, currency, l.Max)
		}
		if minBound.Valid && maxBound.Valid && minBound.Decimal.GreaterThan(maxBound.Decimal) {
			return nil, fmt.Errorf("%w: %s min is greater than max", ErrInvalidLimit, currency)
		}
		s.limits[strings.ToUpper(currency)] = Limit{Min: minBound, Max: maxBound}
	}

	return s, nil
}

func parseBound(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, ErrInvalidLimit
	}
	return decimal.NewNullDecimal(d), nil
}

// Check verifies that amount of currency is within its limit
func (s *Service) Check(currency string, amount decimal.Decimal) error {
	currency = strings.ToUpper(currency)
	l, ok := s.limits[currency]
	if !ok {
		return nil
	}

	if l.Min.Valid && amount.LessThan(l.Min.Decimal) {
		return fmt.Errorf("%w of %s %s", ErrBelowMinimum, l.Min.Decimal.String(), currency)
	}
	if l.Max.Valid && amount.GreaterThan(l.Max.Decimal) {
		return fmt.Errorf("%w of %s %s", ErrAboveMaximum, l.Max.Decimal.String(), currency)
	}

	return nil
}

// Get returns the limit for a currency
func (s *Service) Get(currency string) (Limit, bool) {
	l, ok := s.limits[strings.ToUpper(currency)]
	return l, ok
}

// All returns every configured limit
func (s *Service) All() map[string]Limit {
	out := make(map[string]Limit, len(s.limits))
	for c, l := range s.limits {
		out[c] = l
	}
	return out
}
