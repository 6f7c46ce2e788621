package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on every start. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		org_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		role INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (org_id, user_id),
		FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		org_id INTEGER PRIMARY KEY,
		plan TEXT NOT NULL,
		status TEXT NOT NULL,
		stripe_customer_id TEXT,
		stripe_subscription_id TEXT,
		price_id TEXT,
		current_period_end DATETIME,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_customer ON subscriptions(stripe_customer_id)`,
	`CREATE TABLE IF NOT EXISTS boards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		org_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (org_id) REFERENCES organizations(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_boards_org ON boards(org_id)`,
	`CREATE TABLE IF NOT EXISTS columns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE,
		UNIQUE (board_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		column_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		position INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (column_id) REFERENCES columns(id) ON DELETE CASCADE,
		UNIQUE (column_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS labels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE,
		UNIQUE (board_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS card_labels (
		card_id INTEGER NOT NULL,
		label_id INTEGER NOT NULL,
		PRIMARY KEY (card_id, label_id),
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE,
		FOREIGN KEY (label_id) REFERENCES labels(id) ON DELETE CASCADE
	)`,
}

// runMigrations creates the database schema
func runMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
