package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate creates the tables when they are missing. Constraint names are
// referenced by the repositories when mapping driver errors.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		email         TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		photo         TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'participant',
		password_hash TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_pkey PRIMARY KEY (email),
		CONSTRAINT users_role_check CHECK (role IN ('participant', 'organizer'))
	)`,
	`CREATE TABLE IF NOT EXISTS camps (
		id                      TEXT NOT NULL,
		name                    TEXT NOT NULL,
		description             TEXT NOT NULL DEFAULT '',
		location                TEXT NOT NULL DEFAULT '',
		date                    TIMESTAMPTZ NOT NULL,
		fees                    NUMERIC(12, 2) NOT NULL DEFAULT 0,
		healthcare_professional TEXT NOT NULL DEFAULT '',
		participant_count       INTEGER NOT NULL DEFAULT 0,
		organizer_email         TEXT NOT NULL,
		image_key               TEXT,
		created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT camps_pkey PRIMARY KEY (id),
		CONSTRAINT camps_participant_count_check CHECK (participant_count >= 0),
		CONSTRAINT camps_fees_check CHECK (fees >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS registrations (
		id                  TEXT NOT NULL,
		camp_id             TEXT NOT NULL,
		participant_email   TEXT NOT NULL,
		participant_name    TEXT NOT NULL,
		age                 INTEGER NOT NULL,
		phone_number        TEXT NOT NULL,
		gender              TEXT NOT NULL,
		emergency_contact   TEXT NOT NULL,
		confirmation_status TEXT NOT NULL DEFAULT 'Pending',
		payment_status      TEXT NOT NULL DEFAULT 'Pay',
		transaction_id      TEXT,
		paid_at             TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT registrations_pkey PRIMARY KEY (id),
		CONSTRAINT registrations_camp_id_fkey FOREIGN KEY (camp_id) REFERENCES camps (id) ON DELETE CASCADE,
		CONSTRAINT registrations_camp_participant_key UNIQUE (camp_id, participant_email)
	)`,
	`CREATE INDEX IF NOT EXISTS registrations_paid_created_idx ON registrations (payment_status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS registrations_participant_idx ON registrations (participant_email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS registrations_transaction_id_key ON registrations (transaction_id)
		WHERE transaction_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id                TEXT NOT NULL,
		camp_id           TEXT NOT NULL,
		participant_name  TEXT NOT NULL DEFAULT '',
		participant_email TEXT NOT NULL,
		participant_image TEXT NOT NULL DEFAULT '',
		rating            INTEGER NOT NULL,
		feedback          TEXT NOT NULL DEFAULT '',
		date              TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT feedback_pkey PRIMARY KEY (id),
		CONSTRAINT feedback_camp_id_fkey FOREIGN KEY (camp_id) REFERENCES camps (id) ON DELETE CASCADE,
		CONSTRAINT feedback_rating_check CHECK (rating BETWEEN 1 AND 5)
	)`,
}
