package coinspaid

import "fmt"

// TransactionDirection tells whether a transaction credits or debits the merchant
type TransactionDirection int

const (
	DirectionDeposit TransactionDirection = iota + 1
	DirectionWithdrawal
)

var directionToWire = map[TransactionDirection]string{
	DirectionDeposit:    "deposit",
	DirectionWithdrawal: "withdrawal",
}

var directionFromWire = invert(directionToWire)

// ParseTransactionDirection parses the wire representation of a direction
func ParseTransactionDirection(s string) (TransactionDirection, error) {
	return parseWire(directionFromWire, s)
}

func (d TransactionDirection) String() string { return directionToWire[d] }

// MarshalText implements encoding.TextMarshaler
func (d TransactionDirection) MarshalText() ([]byte, error) {
	return marshalWire(directionToWire, d)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *TransactionDirection) UnmarshalText(text []byte) error {
	v, err := ParseTransactionDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// TransactionStatus is the confirmation state of a transaction
type TransactionStatus int

const (
	StatusNotConfirmed TransactionStatus = iota + 1
	StatusConfirmed
	StatusCanceled
	StatusDeclined
)

var statusToWire = map[TransactionStatus]string{
	StatusNotConfirmed: "not_confirmed",
	StatusConfirmed:    "confirmed",
	StatusCanceled:     "canceled",
	StatusDeclined:     "declined",
}

var statusFromWire = invert(statusToWire)

// ParseTransactionStatus parses the wire representation of a status
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	return parseWire(statusFromWire, s)
}

func (s TransactionStatus) String() string { return statusToWire[s] }

// MarshalText implements encoding.TextMarshaler
func (s TransactionStatus) MarshalText() ([]byte, error) {
	return marshalWire(statusToWire, s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *TransactionStatus) UnmarshalText(text []byte) error {
	v, err := ParseTransactionStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// TransactionKind is the settlement channel of a transaction
type TransactionKind int

const (
	TransactionKindBlockchain TransactionKind = iota + 1
)

var kindToWire = map[TransactionKind]string{
	TransactionKindBlockchain: "blockchain",
}

var kindFromWire = invert(kindToWire)

// ParseTransactionKind parses the wire representation of a transaction kind
func ParseTransactionKind(s string) (TransactionKind, error) {
	return parseWire(kindFromWire, s)
}

func (k TransactionKind) String() string { return kindToWire[k] }

// MarshalText implements encoding.TextMarshaler
func (k TransactionKind) MarshalText() ([]byte, error) {
	return marshalWire(kindToWire, k)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *TransactionKind) UnmarshalText(text []byte) error {
	v, err := ParseTransactionKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func invert[K comparable, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func parseWire[T comparable](table map[string]T, s string) (T, error) {
	v, ok := table[s]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrUnsupportedValue, s)
	}
	return v, nil
}

func marshalWire[T comparable](table map[T]string, v T) ([]byte, error) {
	s, ok := table[v]
	if !ok {
		return nil, fmt.Errorf("%w: %#v", ErrUnsupportedValue, v)
	}
	return []byte(s), nil
}
