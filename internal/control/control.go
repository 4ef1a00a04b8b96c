// Package control provides operator switches for outgoing payments.
//
// Key Requirements:
//   - Operator must be able to suspend all withdrawals on demand
//   - Withdrawals of individual currencies can be suspended
//   - State changes are persisted and logged
package control

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrWithdrawalsSuspended = errors.New("withdrawals are currently suspended")
	ErrCurrencySuspended    = errors.New("withdrawals are suspended for currency")
)

const withdrawalsKey = "withdrawals_enabled"

// Status is the current state of the payment switches
type Status struct {
	WithdrawalsEnabled  bool              `json:"withdrawals_enabled"`
	SuspendedAt         *time.Time        `json:"suspended_at,omitempty"`
	SuspendedBy         string            `json:"suspended_by,omitempty"`
	SuspendedReason     string            `json:"suspended_reason,omitempty"`
	SuspendedCurrencies map[string]string `json:"suspended_currencies"`
}

// Service provides withdrawal control functionality.
// A nil db keeps the state in memory only.
type Service struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time

	mu                  sync.RWMutex
	withdrawalsEnabled  bool
	suspendedCurrencies map[string]string
	suspendedAt         *time.Time
	suspendedBy         string
	suspendedReason     string
}

// New creates a new control service
func New(db *sql.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:                  db,
		logger:              logger,
		now:                 func() time.Time { return time.Now().UTC() },
		withdrawalsEnabled:  true,
		suspendedCurrencies: make(map[string]string),
	}
}

// SuspendWithdrawals stops all outgoing withdrawals
func (s *Service) SuspendWithdrawals(ctx context.Context, reason, authorizedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if err := s.persistState(ctx, "false", reason, now, authorizedBy); err != nil {
		return err
	}

	s.withdrawalsEnabled = false
	s.suspendedAt = &now
	s.suspendedBy = authorizedBy
	s.suspendedReason = reason

	s.logger.Warn("withdrawals suspended", "reason", reason, "authorized_by", authorizedBy)
	return nil
}

// ResumeWithdrawals allows withdrawals again
func (s *Service) ResumeWithdrawals(ctx context.Context, authorizedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistState(ctx, "true", "", s.now(), authorizedBy); err != nil {
		return err
	}

	s.withdrawalsEnabled = true
	s.suspendedAt = nil
	s.suspendedBy = ""
	s.suspendedReason = ""

	s.logger.Info("withdrawals resumed", "authorized_by", authorizedBy)
	return nil
}

// SuspendCurrency stops withdrawals of a single currency
func (s *Service) SuspendCurrency(ctx context.Context, currency, reason, authorizedBy string) error {
	currency = strings.ToUpper(currency)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO suspended_currencies (currency, reason, suspended_at, suspended_by)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (currency) DO UPDATE SET reason = $2, suspended_at = $3, suspended_by = $4
		`, currency, reason, s.now(), authorizedBy)
		if err != nil {
			return fmt.Errorf("failed to persist currency state: %w", err)
		}
	}

	s.suspendedCurrencies[currency] = reason

	s.logger.Warn("currency withdrawals suspended",
		"currency", currency,
		"reason", reason,
		"authorized_by", authorizedBy)
	return nil
}

// ResumeCurrency allows withdrawals of a currency again
func (s *Service) ResumeCurrency(ctx context.Context, currency, authorizedBy string) error {
	currency = strings.ToUpper(currency)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM suspended_currencies WHERE currency = $1`, currency)
		if err != nil {
			return fmt.Errorf("failed to persist currency state: %w", err)
		}
	}

	delete(s.suspendedCurrencies, currency)

	s.logger.Info("currency withdrawals resumed", "currency", currency, "authorized_by", authorizedBy)
	return nil
}

// IsWithdrawalsEnabled checks if withdrawals are globally enabled
func (s *Service) IsWithdrawalsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawalsEnabled
}

// IsCurrencyEnabled checks if withdrawals of a currency are enabled
func (s *Service) IsCurrencyEnabled(currency string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, suspended := s.suspendedCurrencies[strings.ToUpper(currency)]
	return !suspended
}

// CheckWithdrawal verifies a withdrawal of currency may be sent
func (s *Service) CheckWithdrawal(currency string) error {
	if !s.IsWithdrawalsEnabled() {
		return ErrWithdrawalsSuspended
	}

	if !s.IsCurrencyEnabled(currency) {
		return fmt.Errorf("%w %s", ErrCurrencySuspended, strings.ToUpper(currency))
	}

	return nil
}

// Status returns the current switch state
func (s *Service) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	currencies := make(map[string]string, len(s.suspendedCurrencies))
	for c, reason := range s.suspendedCurrencies {
		currencies[c] = reason
	}

	return &Status{
		WithdrawalsEnabled:  s.withdrawalsEnabled,
		SuspendedAt:         s.suspendedAt,
		SuspendedBy:         s.suspendedBy,
		SuspendedReason:     s.suspendedReason,
		SuspendedCurrencies: currencies,
	}
}

// SuspendedCurrencies returns the suspended currency codes in order
func (s *Service) SuspendedCurrencies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.suspendedCurrencies))
	for c := range s.suspendedCurrencies {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LoadState loads persisted state from database on startup
func (s *Service) LoadState(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		value     string
		reason    sql.NullString
		updatedAt time.Time
		updatedBy sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT value, reason, updated_at, updated_by FROM system_state WHERE key = $1
	`, withdrawalsKey).Scan(&value, &reason, &updatedAt, &updatedBy)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to load withdrawal state: %w", err)
	}
	s.withdrawalsEnabled = value != "false"
	if !s.withdrawalsEnabled {
		s.suspendedAt = &updatedAt
		s.suspendedBy = updatedBy.String
		s.suspendedReason = reason.String
	}

	rows, err := s.db.QueryContext(ctx, `SELECT currency, reason FROM suspended_currencies`)
	if err != nil {
		return fmt.Errorf("failed to load suspended currencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var currency string
		var reason sql.NullString
		if err := rows.Scan(&currency, &reason); err != nil {
			return err
		}
		s.suspendedCurrencies[currency] = reason.String
	}

	return rows.Err()
}

func (s *Service) persistState(ctx context.Context, value, reason string, at time.Time, by string) error {
	if s.db == nil {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_state (key, value, reason, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET value = $2, reason = $3, updated_at = $4, updated_by = $5
	`, withdrawalsKey, value, reason, at, by)
	if err != nil {
		return fmt.Errorf("failed to persist withdrawal state: %w", err)
	}
	return nil
}
