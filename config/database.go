package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS provider_connections (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			account_id VARCHAR(255) UNIQUE NOT NULL,
			provider VARCHAR(100) NOT NULL,
			access_token TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			external_id VARCHAR(255) NOT NULL,
			account_id VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			date TIMESTAMP NOT NULL,
			category VARCHAR(100),
			currency_code VARCHAR(10),
			status VARCHAR(50),
			account_type VARCHAR(20) NOT NULL,
			synced_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(account_id, external_id)
		)`,

		`CREATE TABLE IF NOT EXISTS closed_bills (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			account_id VARCHAR(255) NOT NULL,
			due_date DATE NOT NULL,
			total_amount NUMERIC(14,2) NOT NULL,
			line_items JSONB DEFAULT '[]',
			synced_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(account_id, due_date)
		)`,

		`CREATE TABLE IF NOT EXISTS sync_runs (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			account_id VARCHAR(255) NOT NULL,
			transactions_count INTEGER DEFAULT 0,
			bills_count INTEGER DEFAULT 0,
			status VARCHAR(50) DEFAULT 'ok',
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_closed_bills_account_id ON closed_bills(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_account_id ON sync_runs(account_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
