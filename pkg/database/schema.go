package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS policy_documents (
		id TEXT PRIMARY KEY,
		sort_order INT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		content TEXT NOT NULL,
		risk_score INT NOT NULL CHECK (risk_score BETWEEN 0 AND 100),
		version INT NOT NULL CHECK (version >= 1),
		scan_date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('processed', 'processing', 'failed'))
	)`,
	`CREATE TABLE IF NOT EXISTS policy_clauses (
		document_id TEXT NOT NULL REFERENCES policy_documents(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		ordinal INT NOT NULL,
		text TEXT NOT NULL,
		risk_level TEXT NOT NULL CHECK (risk_level IN ('safe', 'caution', 'high')),
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		position_start INT NOT NULL,
		position_end INT NOT NULL,
		PRIMARY KEY (document_id, id),
		CHECK (position_start >= 0 AND position_start < position_end)
	)`,
	`CREATE TABLE IF NOT EXISTS document_versions (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES policy_documents(id) ON DELETE CASCADE,
		version INT NOT NULL,
		scan_date TIMESTAMPTZ NOT NULL,
		risk_score INT NOT NULL,
		changes TEXT[] NOT NULL DEFAULT '{}',
		clauses_added INT NOT NULL DEFAULT 0,
		clauses_removed INT NOT NULL DEFAULT 0,
		clauses_modified INT NOT NULL DEFAULT 0,
		UNIQUE (document_id, version)
	)`,
	`CREATE TABLE IF NOT EXISTS alert_settings (
		user_id TEXT PRIMARY KEY,
		email_alerts BOOLEAN NOT NULL,
		risk_threshold TEXT NOT NULL CHECK (risk_threshold IN ('safe', 'caution', 'high')),
		document_updates BOOLEAN NOT NULL,
		weekly_digest BOOLEAN NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables the repositories expect. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
