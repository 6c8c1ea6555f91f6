package db

import (
	"context"
	"database/sql"
)

const keystoneMigration = `
CREATE TABLE IF NOT EXISTS telemetry_snapshots (
    id bigserial PRIMARY KEY,
    active_users bigint NOT NULL,
    captured_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS telemetry_snapshots_captured_at_idx
ON telemetry_snapshots (captured_at DESC);
`

func RunKeystoneMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, keystoneMigration)
	return err
}
