// Package callbacks persists payment status callbacks received from the gateway
package callbacks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourfin-enon/coinspaid-connector/pkg/coinspaid"
)

var ErrNotFound = errors.New("callback not found")

// Record is a stored callback
type Record struct {
	ID               string          `json:"id"`
	OperationID      int64           `json:"operation_id"`
	ForeignID        *string         `json:"foreign_id,omitempty"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	CurrencySent     string          `json:"currency_sent"`
	AmountSent       string          `json:"amount_sent"`
	CurrencyReceived string          `json:"currency_received"`
	AmountReceived   string          `json:"amount_received"`
	Error            string          `json:"error,omitempty"`
	Payload          json.RawMessage `json:"payload"`
	ReceivedAt       time.Time       `json:"received_at"`
}

// NewRecord builds a record from a parsed callback and its raw body
func NewRecord(raw []byte, cb *coinspaid.CallbackData) *Record {
	rec := &Record{
		ID:               uuid.New().String(),
		OperationID:      cb.ID,
		Type:             cb.Type,
		Status:           cb.Status,
		CurrencySent:     cb.CurrencySent.Currency,
		AmountSent:       cb.CurrencySent.Amount,
		CurrencyReceived: cb.CurrencyReceived.Currency,
		AmountReceived:   cb.CurrencyReceived.Amount,
		Error:            cb.Error,
		Payload:          json.RawMessage(raw),
		ReceivedAt:       time.Now().UTC(),
	}
	if foreignID, ok := cb.ResolvedForeignID(); ok {
		rec.ForeignID = &foreignID
	}
	return rec
}

// Filter defines criteria for listing callbacks
type Filter struct {
	ForeignID string
	Status    string
	From      time.Time
	To        time.Time
	Limit     int
}

// Store provides callback persistence
type Store struct {
	db *sql.DB
}

// New creates a new callback store
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save records a callback
func (s *Store) Save(ctx context.Context, raw []byte, cb *coinspaid.CallbackData) (*Record, error) {
	rec := NewRecord(raw, cb)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO callbacks (id, operation_id, foreign_id, type, status, currency_sent, amount_sent,
			currency_received, amount_received, error, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, rec.OperationID, rec.ForeignID, rec.Type, rec.Status, rec.CurrencySent, rec.AmountSent,
		rec.CurrencyReceived, rec.AmountReceived, rec.Error, string(rec.Payload), rec.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store callback: %w", err)
	}

	return rec, nil
}

const selectColumns = `SELECT id, operation_id, foreign_id, type, status, currency_sent, amount_sent,
	currency_received, amount_received, error, payload, received_at FROM callbacks`

// Get retrieves a callback by id
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get callback: %w", err)
	}
	return rec, nil
}

// List retrieves callbacks with optional filtering, newest first
func (s *Store) List(ctx context.Context, filter *Filter) ([]*Record, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []interface{}{}
	paramIdx := 1

	if filter != nil {
		if filter.ForeignID != "" {
			query += fmt.Sprintf(" AND foreign_id = $%d", paramIdx)
			args = append(args, filter.ForeignID)
			paramIdx++
		}
		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", paramIdx)
			args = append(args, filter.Status)
			paramIdx++
		}
		if !filter.From.IsZero() {
			query += fmt.Sprintf(" AND received_at >= $%d", paramIdx)
			args = append(args, filter.From)
			paramIdx++
		}
		if !filter.To.IsZero() {
			query += fmt.Sprintf(" AND received_at <= $%d", paramIdx)
			args = append(args, filter.To)
			paramIdx++
		}
	}

	query += " ORDER BY received_at DESC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", paramIdx)
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list callbacks: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var foreignID, currencySent, amountSent, currencyReceived, amountReceived, cbErr sql.NullString
	var payload string

	err := row.Scan(&rec.ID, &rec.OperationID, &foreignID, &rec.Type, &rec.Status,
		&currencySent, &amountSent, &currencyReceived, &amountReceived, &cbErr, &payload, &rec.ReceivedAt)
	if err != nil {
		return nil, err
	}

	if foreignID.Valid {
		rec.ForeignID = &foreignID.String
	}
	rec.CurrencySent = currencySent.String
	rec.AmountSent = amountSent.String
	rec.CurrencyReceived = currencyReceived.String
	rec.AmountReceived = amountReceived.String
	rec.Error = cbErr.String
	rec.Payload = json.RawMessage(payload)

	return &rec, nil
}
