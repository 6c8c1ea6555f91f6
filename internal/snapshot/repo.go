package snapshot

import (
	"context"
	"database/sql"
	"time"
)

// Snapshot is one archived reading of the live presence count. Unlike the
// presence set itself, snapshots survive store flushes and give the widget a
// trend line; they are best-effort and never block the live path.
type Snapshot struct {
	ID          int64     `json:"id"`
	ActiveUsers int64     `json:"activeUsers"`
	CapturedAt  time.Time `json:"capturedAt"`
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Record(ctx context.Context, activeUsers int64, capturedAt time.Time) error {
	const q = `
INSERT INTO telemetry_snapshots (active_users, captured_at)
VALUES ($1, $2);
`
	_, err := r.db.ExecContext(ctx, q, activeUsers, capturedAt)
	return err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	const q = `
SELECT id, active_users, captured_at
FROM telemetry_snapshots
ORDER BY captured_at DESC
LIMIT $1;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0, limit)
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.ActiveUsers, &s.CapturedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
