package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS capsules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_a UUID NOT NULL,
		user_b UUID,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		invite_code VARCHAR(32) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		joined_at TIMESTAMP WITH TIME ZONE,
		dissolved_at TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT capsules_status_check CHECK (status IN ('pending', 'active', 'dissolved')),
		CONSTRAINT capsules_distinct_sides CHECK (user_b IS NULL OR user_b <> user_a)
	)`,

	// Codes are compared case-insensitively, so uniqueness is on the folded value.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_capsules_invite_code ON capsules (UPPER(invite_code))`,
	`CREATE INDEX IF NOT EXISTS idx_capsules_user_a ON capsules(user_a)`,
	`CREATE INDEX IF NOT EXISTS idx_capsules_user_b ON capsules(user_b)`,

	`CREATE TABLE IF NOT EXISTS gated_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		capsule_id UUID NOT NULL REFERENCES capsules(id) ON DELETE CASCADE,
		kind VARCHAR(20) NOT NULL DEFAULT 'relationship',
		created_by UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(32) NOT NULL DEFAULT 'planning',
		vote_user_a BOOLEAN,
		vote_user_b BOOLEAN,
		confirmed_by_a BOOLEAN NOT NULL DEFAULT FALSE,
		confirmed_by_b BOOLEAN NOT NULL DEFAULT FALSE,
		feeling_a TEXT,
		need_a TEXT,
		willing_a TEXT,
		compromise_a TEXT,
		feeling_b TEXT,
		need_b TEXT,
		willing_b TEXT,
		compromise_b TEXT,
		decision_notes TEXT,
		moved_to_resolve_at TIMESTAMP WITH TIME ZONE,
		moved_to_decision_at TIMESTAMP WITH TIME ZONE,
		confirmed_at TIMESTAMP WITH TIME ZONE,
		completed_at TIMESTAMP WITH TIME ZONE,
		archived_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT gated_items_kind_check CHECK (kind IN ('plan', 'relationship')),
		CONSTRAINT gated_items_status_check CHECK (status IN (
			'planning', 'resolving', 'pending_decision', 'confirmed', 'completed', 'archived'
		)),
		CONSTRAINT gated_items_confirmed_both CHECK (
			status NOT IN ('confirmed', 'completed') OR (confirmed_by_a AND confirmed_by_b)
		)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_gated_items_capsule_id ON gated_items(capsule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_gated_items_capsule_status ON gated_items(capsule_id, status)`,

	`CREATE TABLE IF NOT EXISTS vault_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		capsule_id UUID NOT NULL REFERENCES capsules(id) ON DELETE CASCADE,
		uploaded_by UUID NOT NULL,
		title VARCHAR(255) NOT NULL DEFAULT '',
		payload_ref TEXT NOT NULL,
		approved_by_uploader BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by_partner BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		rejected_by UUID,
		approved_at TIMESTAMP WITH TIME ZONE,
		rejected_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		CONSTRAINT vault_items_status_check CHECK (status IN ('pending', 'approved', 'rejected')),
		CONSTRAINT vault_items_approved_both CHECK (
			(status = 'approved') = (approved_by_uploader AND approved_by_partner)
			OR status = 'rejected'
		)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_vault_items_capsule_id ON vault_items(capsule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_vault_items_capsule_status ON vault_items(capsule_id, status)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
