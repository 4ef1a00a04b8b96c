// Package database provides database access for the connector service
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates all required tables
func (db *DB) Migrate() error {
	schema := `
	-- Payment status callbacks received from the gateway
	CREATE TABLE IF NOT EXISTS callbacks (
		id UUID PRIMARY KEY,
		operation_id BIGINT NOT NULL,
		foreign_id VARCHAR(255),
		type VARCHAR(50) NOT NULL,
		status VARCHAR(50) NOT NULL,
		currency_sent VARCHAR(20),
		amount_sent VARCHAR(64),
		currency_received VARCHAR(20),
		amount_received VARCHAR(64),
		error TEXT,
		payload JSON NOT NULL,
		received_at TIMESTAMP NOT NULL
	);

	-- Payload holds the body exactly as signed by the gateway
	ALTER TABLE callbacks ALTER COLUMN payload TYPE JSON;

	CREATE INDEX IF NOT EXISTS idx_callbacks_foreign_id ON callbacks(foreign_id);
	CREATE INDEX IF NOT EXISTS idx_callbacks_operation ON callbacks(operation_id);
	CREATE INDEX IF NOT EXISTS idx_callbacks_received ON callbacks(received_at);

	-- Operator switches that survive restarts
	CREATE TABLE IF NOT EXISTS system_state (
		key VARCHAR(100) PRIMARY KEY,
		value TEXT NOT NULL,
		reason TEXT,
		updated_at TIMESTAMP NOT NULL,
		updated_by VARCHAR(255)
	);

	-- Currencies with withdrawals suspended
	CREATE TABLE IF NOT EXISTS suspended_currencies (
		currency VARCHAR(20) PRIMARY KEY,
		reason TEXT,
		suspended_at TIMESTAMP NOT NULL,
		suspended_by VARCHAR(255)
	);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Reset drops all tables (for testing)
func (db *DB) Reset() error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS suspended_currencies CASCADE;
		DROP TABLE IF EXISTS system_state CASCADE;
		DROP TABLE IF EXISTS callbacks CASCADE;
	`)
	return err
}

// CleanData truncates all tables without dropping them (for testing)
func (db *DB) CleanData() error {
	_, err := db.Exec(`TRUNCATE TABLE callbacks, system_state, suspended_currencies;`)
	return err
}
