package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL for the gossip schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			is_online BOOLEAN DEFAULT FALSE,
			otp_enabled BOOLEAN DEFAULT FALSE,
			otp_verified BOOLEAN DEFAULT FALSE,
			otp_auth_url TEXT DEFAULT NULL,
			otp_secret TEXT NOT NULL DEFAULT '',
			mfa_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			last_seen TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			admin_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id BIGINT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id),
			joined_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (group_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			image TEXT DEFAULT NULL,
			video TEXT DEFAULT NULL,
			location JSONB DEFAULT NULL,
			sender_id BIGINT NOT NULL REFERENCES users(id),
			recipient_id BIGINT DEFAULT NULL REFERENCES users(id),
			group_id BIGINT DEFAULT NULL REFERENCES groups(id),
			client_msg_id TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'sent',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			CHECK ((recipient_id IS NULL) != (group_id IS NULL))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_users_is_online ON users(is_online);`,
		`CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, recipient_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_state ON messages(recipient_id, state, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_group ON messages(group_id, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
